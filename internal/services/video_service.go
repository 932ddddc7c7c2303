package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"videotube-api/internal/apierror"
	"videotube-api/internal/database"
	"videotube-api/internal/media"
	"videotube-api/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListInput holds the raw listing query parameters.
type ListInput struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	UserID   string
}

// PublishInput carries a new video's details and its locally staged files.
type PublishInput struct {
	Title         string
	Description   string
	VideoFilePath string
	ThumbnailPath string
	OwnerID       primitive.ObjectID
}

// UpdateInput carries replacement details and a staged thumbnail for an
// existing video.
type UpdateInput struct {
	VideoID       string
	Title         string
	Description   string
	ThumbnailPath string
	CallerID      primitive.ObjectID
}

type videoDetails struct {
	Title       string `validate:"notblank"`
	Description string `validate:"notblank"`
}

// VideoService implements the video workflows. Only a video's owner may
// change or remove it.
type VideoService struct {
	videos VideoStore
	media  media.Store
}

func NewVideoService(videos VideoStore, store media.Store) *VideoService {
	return &VideoService{videos: videos, media: store}
}

// BuildQuery converts raw listing parameters into a store query. Missing or
// invalid page and limit values fall back to their defaults.
func BuildQuery(in ListInput) (database.VideoQuery, error) {
	q := database.VideoQuery{
		Page:      positiveInt(in.Page, DefaultPage),
		Limit:     min(positiveInt(in.Limit, DefaultLimit), MaxLimit),
		Search:    strings.TrimSpace(in.Query),
		SortBy:    database.DefaultSortField,
		Ascending: in.SortType == "asc",
	}
	if database.IsSortField(in.SortBy) {
		q.SortBy = in.SortBy
	}
	if in.UserID != "" {
		owner, err := primitive.ObjectIDFromHex(in.UserID)
		if err != nil {
			return database.VideoQuery{}, apierror.Validation("Invalid user id")
		}
		q.OwnerID = &owner
	}
	return q, nil
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (s *VideoService) List(ctx context.Context, in ListInput) ([]models.VideoListItem, error) {
	q, err := BuildQuery(in)
	if err != nil {
		return nil, err
	}
	return s.videos.List(ctx, q)
}

// Publish uploads the video and its thumbnail and stores the new record.
// Uploads are removed again if a later step fails.
func (s *VideoService) Publish(ctx context.Context, in PublishInput) (_ *models.Video, err error) {
	details := videoDetails{Title: strings.TrimSpace(in.Title), Description: strings.TrimSpace(in.Description)}
	if !valid(details) {
		return nil, apierror.Validation("title and description are required")
	}
	if in.VideoFilePath == "" {
		return nil, apierror.Validation("No video file found")
	}
	if in.ThumbnailPath == "" {
		return nil, apierror.Validation("No thumbnail file found")
	}

	scope := media.NewScope(s.media)
	defer func() {
		if err != nil {
			scope.Rollback(ctx)
		}
	}()

	videoFile, err := scope.Upload(ctx, in.VideoFilePath)
	if err != nil || videoFile.URL == "" {
		return nil, apierror.Upstream("Error while uploading video file", err)
	}
	thumbnail, err := scope.Upload(ctx, in.ThumbnailPath)
	if err != nil || thumbnail.URL == "" {
		return nil, apierror.Upstream("Error while uploading thumbnail", err)
	}

	video := models.NewVideo(in.OwnerID, details.Title, details.Description)
	video.VideoFile = videoFile.URL
	video.Thumbnail = thumbnail.URL
	video.Duration = videoFile.Duration

	if err = s.videos.Create(ctx, video); err != nil {
		return nil, apierror.Upstream("Error while publishing the video", err)
	}
	scope.Commit()
	return video, nil
}

func (s *VideoService) GetByID(ctx context.Context, rawID string) (*models.Video, error) {
	id, err := parseVideoID(rawID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Update replaces the title, description and thumbnail of the caller's
// video. The old thumbnail is deleted before the new one is uploaded.
func (s *VideoService) Update(ctx context.Context, in UpdateInput) (_ *models.Video, err error) {
	video, err := s.loadOwned(ctx, in.VideoID, in.CallerID, ActionUpdate)
	if err != nil {
		return nil, err
	}

	details := videoDetails{Title: strings.TrimSpace(in.Title), Description: strings.TrimSpace(in.Description)}
	if !valid(details) {
		return nil, apierror.Validation("Provide updated title and description")
	}
	if in.ThumbnailPath == "" {
		return nil, apierror.Validation("Provide thumbnail file")
	}

	deleted, err := s.media.Delete(ctx, video.Thumbnail)
	if err != nil || !deleted.OK() {
		return nil, apierror.Upstream("Error while deleting old thumbnail", err)
	}

	scope := media.NewScope(s.media)
	defer func() {
		if err != nil {
			scope.Rollback(ctx)
		}
	}()

	thumbnail, err := scope.Upload(ctx, in.ThumbnailPath)
	if err != nil || thumbnail.URL == "" {
		return nil, apierror.Upstream("Error while uploading new thumbnail", err)
	}

	updated, err := s.videos.UpdateDetails(ctx, video.ID, details.Title, details.Description, thumbnail.URL)
	if err != nil || updated == nil {
		return nil, apierror.Upstream("Error while updating video", err)
	}
	scope.Commit()
	return updated, nil
}

// Delete removes both media assets concurrently and then the record. The
// record is kept unless both deletions succeed.
func (s *VideoService) Delete(ctx context.Context, rawID string, callerID primitive.ObjectID) error {
	video, err := s.loadOwned(ctx, rawID, callerID, ActionDelete)
	if err != nil {
		return err
	}

	refs := []string{video.VideoFile, video.Thumbnail}
	results := make([]media.DeleteResult, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			result, err := s.media.Delete(ctx, ref)
			results[i] = result
			return err
		})
	}
	err = g.Wait()
	if err != nil || !results[0].OK() || !results[1].OK() {
		return apierror.Upstream("Error while deleting video assets", err)
	}

	if err := s.videos.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apierror.NotFound("Video not found")
		}
		return err
	}
	return nil
}

// TogglePublish flips the publish flag of the caller's video.
func (s *VideoService) TogglePublish(ctx context.Context, rawID string, callerID primitive.ObjectID) (*models.Video, error) {
	video, err := s.loadOwned(ctx, rawID, callerID, ActionTogglePublish)
	if err != nil {
		return nil, err
	}

	updated, err := s.videos.SetPublished(ctx, video.ID, !video.IsPublished)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apierror.NotFound("Video not found")
		}
		return nil, err
	}
	return updated, nil
}

// VideoAction names an owner-only mutation.
type VideoAction int

const (
	ActionUpdate VideoAction = iota
	ActionDelete
	ActionTogglePublish
)

func (a VideoAction) forbidden() string {
	switch a {
	case ActionDelete:
		return "You are not allowed to delete this video"
	case ActionTogglePublish:
		return "You are not allowed to change the publish status of this video"
	default:
		return "You are not allowed to update this video"
	}
}

// Authorize checks that the video exists and belongs to callerID. Handlers
// call it before staging uploads so that a foreign caller is rejected with
// 403 regardless of what the request body contains.
func (s *VideoService) Authorize(ctx context.Context, rawID string, callerID primitive.ObjectID, action VideoAction) error {
	_, err := s.loadOwned(ctx, rawID, callerID, action)
	return err
}

func (s *VideoService) loadOwned(ctx context.Context, rawID string, callerID primitive.ObjectID, action VideoAction) (*models.Video, error) {
	id, err := parseVideoID(rawID)
	if err != nil {
		return nil, err
	}
	video, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !video.IsOwnedBy(callerID) {
		return nil, apierror.Forbidden(action.forbidden())
	}
	return video, nil
}

func (s *VideoService) find(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierror.NotFound("Video not found")
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

func parseVideoID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apierror.Validation("Invalid video id")
	}
	return id, nil
}
