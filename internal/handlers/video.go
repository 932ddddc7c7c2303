package handlers

import (
	"github.com/gin-gonic/gin"

	"videotube-api/internal/media"
	"videotube-api/internal/middleware"
	"videotube-api/internal/response"
	"videotube-api/internal/services"
)

type VideoRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

// VideoHandler serves the video endpoints. Mutations act on behalf of the
// authenticated caller.
type VideoHandler struct {
	Videos     VideoService
	StagingDir string
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(c *gin.Context) (response.Result, error) {
	videos, err := h.Videos.List(c.Request.Context(), services.ListInput{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		UserID:   c.Query("userId"),
	})
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(videos, "Fetched all videos"), nil
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(c *gin.Context) (response.Result, error) {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return response.Result{}, err
	}

	var req VideoRequest
	if err := bindForm(c, &req); err != nil {
		return response.Result{}, err
	}

	staged := newStagedFiles(h.StagingDir)
	defer staged.Cleanup(c)

	videoFile, err := staged.Stage(c, "videoFile", media.VideoExtensions)
	if err != nil {
		return response.Result{}, err
	}
	thumbnail, err := staged.Stage(c, "thumbnail", media.ImageExtensions)
	if err != nil {
		return response.Result{}, err
	}

	video, err := h.Videos.Publish(c.Request.Context(), services.PublishInput{
		Title:         req.Title,
		Description:   req.Description,
		VideoFilePath: videoFile,
		ThumbnailPath: thumbnail,
		OwnerID:       callerID,
	})
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(video, "Video published"), nil
}

// Get handles GET /api/v1/videos/:videoId.
func (h VideoHandler) Get(c *gin.Context) (response.Result, error) {
	video, err := h.Videos.GetByID(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(video, "Video fetched"), nil
}

// Update handles PATCH /api/v1/videos/:videoId.
func (h VideoHandler) Update(c *gin.Context) (response.Result, error) {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return response.Result{}, err
	}

	if err := h.Videos.Authorize(c.Request.Context(), c.Param("videoId"), callerID, services.ActionUpdate); err != nil {
		return response.Result{}, err
	}

	var req VideoRequest
	if err := bindForm(c, &req); err != nil {
		return response.Result{}, err
	}

	staged := newStagedFiles(h.StagingDir)
	defer staged.Cleanup(c)

	thumbnail, err := staged.Stage(c, "thumbnail", media.ImageExtensions)
	if err != nil {
		return response.Result{}, err
	}

	video, err := h.Videos.Update(c.Request.Context(), services.UpdateInput{
		VideoID:       c.Param("videoId"),
		Title:         req.Title,
		Description:   req.Description,
		ThumbnailPath: thumbnail,
		CallerID:      callerID,
	})
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(video, "Video details updated"), nil
}

// Delete handles DELETE /api/v1/videos/:videoId.
func (h VideoHandler) Delete(c *gin.Context) (response.Result, error) {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return response.Result{}, err
	}
	if err := h.Videos.Delete(c.Request.Context(), c.Param("videoId"), callerID); err != nil {
		return response.Result{}, err
	}
	return response.OK(gin.H{}, "Video deleted successfully"), nil
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/:videoId.
func (h VideoHandler) TogglePublish(c *gin.Context) (response.Result, error) {
	callerID, err := middleware.CallerID(c)
	if err != nil {
		return response.Result{}, err
	}
	video, err := h.Videos.TogglePublish(c.Request.Context(), c.Param("videoId"), callerID)
	if err != nil {
		return response.Result{}, err
	}
	return response.OK(video, "Video publish status modified"), nil
}
