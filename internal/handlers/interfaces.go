package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/models"
	"videotube-api/internal/services"
)

// UserService captures the account operations exposed over HTTP.
type UserService interface {
	CheckAvailable(ctx context.Context, in services.RegisterInput) error
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// VideoService captures the video operations exposed over HTTP.
type VideoService interface {
	List(ctx context.Context, in services.ListInput) ([]models.VideoListItem, error)
	Publish(ctx context.Context, in services.PublishInput) (*models.Video, error)
	GetByID(ctx context.Context, rawID string) (*models.Video, error)
	Authorize(ctx context.Context, rawID string, callerID primitive.ObjectID, action services.VideoAction) error
	Update(ctx context.Context, in services.UpdateInput) (*models.Video, error)
	Delete(ctx context.Context, rawID string, callerID primitive.ObjectID) error
	TogglePublish(ctx context.Context, rawID string, callerID primitive.ObjectID) (*models.Video, error)
}

// HealthChecker reports whether the backing database is reachable.
type HealthChecker func(ctx context.Context) error

var (
	_ UserService  = (*services.UserService)(nil)
	_ VideoService = (*services.VideoService)(nil)
)
