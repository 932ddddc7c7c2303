package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"videotube-api/internal/apierror"
	"videotube-api/internal/logging"
)

// stagedFiles saves multipart uploads into a staging directory and removes
// them again once the request is done.
type stagedFiles struct {
	dir   string
	mu    sync.Mutex
	paths []string
}

func newStagedFiles(dir string) *stagedFiles {
	return &stagedFiles{dir: dir}
}

// Stage saves the file sent in field and returns its local path, or "" when
// the request carries no such file. Files whose extension is not in allowed
// are rejected.
func (s *stagedFiles) Stage(c *gin.Context, field string, allowed map[string]bool) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apierror.New(http.StatusRequestEntityTooLarge, "Uploaded files are too large")
		}
		return "", apierror.Wrap(http.StatusBadRequest, "Invalid multipart form", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowed[ext] {
		return "", apierror.Validation("Invalid file type",
			fmt.Sprintf("%s accepts %s files, got %q", field, extensionList(allowed), ext))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	path := filepath.Join(s.dir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(header, path); err != nil {
		return "", fmt.Errorf("stage %s: %w", field, err)
	}

	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
	return path, nil
}

// Cleanup removes every staged file.
func (s *stagedFiles) Cleanup(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.FromContext(c.Request.Context())
	for _, path := range s.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove staged upload", "path", path, "error", err)
		}
	}
	s.paths = s.paths[:0]
}

func extensionList(allowed map[string]bool) string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, " ")
}
