package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

const (
	UsersCollection  = "users"
	VideosCollection = "videos"

	DefaultSortField = "createdAt"
)

// sortColumns maps the sortable document fields to their SQL columns.
var sortColumns = map[string]string{
	"createdAt":   "v.created_at",
	"updatedAt":   "v.updated_at",
	"title":       "v.title",
	"description": "v.description",
	"duration":    "v.duration",
}

// IsSortField reports whether field may be used to order listings.
func IsSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// VideoQuery describes one page of the video search listing.
type VideoQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	Ascending bool
	OwnerID   *primitive.ObjectID
}

// Offset is the number of matching records skipped before this page.
func (q VideoQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

func (q VideoQuery) sortField() string {
	if IsSortField(q.SortBy) {
		return q.SortBy
	}
	return DefaultSortField
}
