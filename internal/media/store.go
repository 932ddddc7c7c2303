// Package media hosts uploaded video and image files and hands back
// durable URLs for them.
package media

import (
	"context"
	"path/filepath"
	"strings"
)

const (
	ResultOK       = "ok"
	ResultNotFound = "not found"

	ResourceVideo = "video"
	ResourceImage = "image"
)

// Asset is the remote reference returned for a locally staged file.
type Asset struct {
	URL          string  `json:"url"`
	PublicID     string  `json:"publicId"`
	Duration     float64 `json:"duration,omitempty"`
	ResourceType string  `json:"resourceType"`
}

// DeleteResult reports the outcome of a deletion; only ResultOK is success.
type DeleteResult struct {
	Result string `json:"result"`
}

// OK reports whether the deletion succeeded.
func (r DeleteResult) OK() bool {
	return r.Result == ResultOK
}

// Store uploads local files and deletes previously uploaded assets by URL.
type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, ref string) (DeleteResult, error)
}

var (
	VideoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true}
	ImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
)

// ResourceTypeOf classifies a file by its extension.
func ResourceTypeOf(path string) string {
	if VideoExtensions[strings.ToLower(filepath.Ext(path))] {
		return ResourceVideo
	}
	return ResourceImage
}
