package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videotube-api/internal/models"
)

// MongoUserStore persists users in the "users" collection.
type MongoUserStore struct {
	users *mongo.Collection
	now   func() time.Time
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: db.Collection(UsersCollection), now: utcNow}
}

func (s *MongoUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}}

	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by username or email: %w", err)
	}
	return &user, nil
}

// Create inserts user and assigns its id and timestamps.
func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := s.now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByIDSanitized loads a user without the password and refresh token.
func (s *MongoUserStore) FindByIDSanitized(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.D{
		{Key: "password", Value: 0},
		{Key: "refreshToken", Value: 0},
	})

	var user models.User
	if err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return &user, nil
}

// utcNow is truncated to the millisecond precision BSON dates keep.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
