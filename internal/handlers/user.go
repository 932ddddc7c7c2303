package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube-api/internal/apierror"
	"videotube-api/internal/media"
	"videotube-api/internal/response"
	"videotube-api/internal/services"
)

type RegisterRequest struct {
	FullName string `form:"fullName" json:"fullName"`
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// UserHandler serves the account endpoints.
type UserHandler struct {
	Users      UserService
	StagingDir string
}

// Register handles POST /api/v1/users/register.
func (h UserHandler) Register(c *gin.Context) (response.Result, error) {
	var req RegisterRequest
	if err := bindForm(c, &req); err != nil {
		return response.Result{}, err
	}

	in := services.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.Users.CheckAvailable(c.Request.Context(), in); err != nil {
		return response.Result{}, err
	}

	staged := newStagedFiles(h.StagingDir)
	defer staged.Cleanup(c)

	avatar, err := staged.Stage(c, "avatar", media.ImageExtensions)
	if err != nil {
		return response.Result{}, err
	}
	cover, err := staged.Stage(c, "coverImage", media.ImageExtensions)
	if err != nil {
		return response.Result{}, err
	}

	in.AvatarPath = avatar
	in.CoverImagePath = cover
	user, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		return response.Result{}, err
	}
	return response.Created(user, "User registered successfully"), nil
}

// bindForm binds multipart, urlencoded or JSON bodies into dst.
func bindForm(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierror.New(http.StatusRequestEntityTooLarge, "Uploaded files are too large")
		}
		return apierror.Wrap(http.StatusBadRequest, "Invalid request body", err)
	}
	return nil
}
