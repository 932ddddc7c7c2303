package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VideoFile   string             `json:"videoFile" bson:"videoFile"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewVideo creates a published Video owned by owner.
func NewVideo(owner primitive.ObjectID, title, description string) *Video {
	return &Video{
		Title:       title,
		Description: description,
		Owner:       owner,
		IsPublished: true,
	}
}

// IsOwnedBy reports whether userID is the video's owner.
func (v *Video) IsOwnedBy(userID primitive.ObjectID) bool {
	return v.Owner == userID
}

// VideoOwner is the public projection of a video's owner in listings.
type VideoOwner struct {
	FullName string `json:"fullName" bson:"fullName"`
	Username string `json:"username" bson:"username"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

// VideoListItem is one row of the search listing.
type VideoListItem struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	VideoFile   string             `json:"videoFile" bson:"videoFile"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	CreatedBy   VideoOwner         `json:"createdBy" bson:"createdBy"`
}
