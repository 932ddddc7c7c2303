package services

import (
	"context"
	"errors"
	"net/http"

	"videotube-api/internal/apierror"
	"videotube-api/internal/database"
	"videotube-api/internal/logging"
	"videotube-api/internal/media"
	"videotube-api/internal/models"
)

const registerFailedMessage = "something went wrong while registering the user"

// RegisterInput carries the registration form after the uploaded files have
// been staged locally. CoverImagePath is optional.
type RegisterInput struct {
	FullName       string `validate:"notblank"`
	Username       string `validate:"notblank"`
	Email          string `validate:"notblank"`
	Password       string `validate:"notblank"`
	AvatarPath     string
	CoverImagePath string
}

// UserService implements account registration.
type UserService struct {
	users UserStore
	media media.Store
}

func NewUserService(users UserStore, store media.Store) *UserService {
	return &UserService{users: users, media: store}
}

// CheckAvailable validates the text fields and rejects identities that are
// already taken. It needs no uploaded files, so handlers call it before
// staging anything.
func (s *UserService) CheckAvailable(ctx context.Context, in RegisterInput) error {
	if !valid(in) {
		return apierror.Validation("all fields are required")
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, models.NormalizeUsername(in.Username), models.NormalizeEmail(in.Email))
	switch {
	case err == nil && existing != nil:
		return apierror.Conflict("user with this email or username already exists")
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return err
	}
	return nil
}

// Register validates the input, rejects duplicate identities, uploads the
// profile images and stores the user. The returned user is re-read without
// credential fields. Images uploaded before a failed insert are removed again.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	if err := s.CheckAvailable(ctx, in); err != nil {
		return nil, err
	}

	user := models.NewUser(in.FullName, in.Username, in.Email, in.Password)

	if in.AvatarPath == "" {
		return nil, apierror.Validation("avatar file is required")
	}

	scope := media.NewScope(s.media)
	defer func() {
		if err != nil {
			scope.Rollback(ctx)
		}
	}()

	avatar, err := scope.Upload(ctx, in.AvatarPath)
	if err != nil || avatar.URL == "" {
		return nil, apierror.Wrap(http.StatusBadRequest, "avatar file is required", err)
	}
	user.Avatar = avatar.URL

	if in.CoverImagePath != "" {
		cover, coverErr := scope.Upload(ctx, in.CoverImagePath)
		if coverErr != nil {
			logging.FromContext(ctx).Warn("cover image upload failed", "error", coverErr)
		}
		user.CoverImage = cover.URL
	}

	if err = user.HashPassword(); err != nil {
		return nil, apierror.Upstream(registerFailedMessage, err)
	}

	if err = s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apierror.Conflict("user with this email or username already exists")
		}
		return nil, err
	}
	scope.Commit()

	created, err := s.users.FindByIDSanitized(ctx, user.ID)
	if err != nil || created == nil {
		return nil, apierror.Upstream(registerFailedMessage, err)
	}
	return created, nil
}
