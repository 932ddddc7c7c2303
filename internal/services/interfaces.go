package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/database"
	"videotube-api/internal/models"
)

// UserStore captures the persistence operations required by registration.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	FindByIDSanitized(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// VideoStore captures persistence for the video workflows.
type VideoStore interface {
	List(ctx context.Context, q database.VideoQuery) ([]models.VideoListItem, error)
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (*models.Video, error)
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

var (
	_ UserStore  = (*database.MongoUserStore)(nil)
	_ UserStore  = (*database.SQLiteUserStore)(nil)
	_ VideoStore = (*database.MongoVideoStore)(nil)
	_ VideoStore = (*database.SQLiteVideoStore)(nil)
)
