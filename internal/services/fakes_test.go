package services

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/database"
	"videotube-api/internal/media"
	"videotube-api/internal/models"
)

type memoryUserStore struct {
	mu          sync.Mutex
	users       []models.User
	findErr     error
	createErr   error
	sanitizeNil bool
}

func (s *memoryUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = primitive.NewObjectID()
	s.users = append(s.users, *user)
	return nil
}

func (s *memoryUserStore) FindByIDSanitized(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sanitizeNil {
		return nil, database.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID == id {
			sanitized := u.Sanitized()
			return &sanitized, nil
		}
	}
	return nil, database.ErrNotFound
}

type memoryVideoStore struct {
	mu        sync.Mutex
	videos    map[primitive.ObjectID]models.Video
	lastQuery database.VideoQuery
	createErr error
	updateErr error
}

func newMemoryVideoStore() *memoryVideoStore {
	return &memoryVideoStore{videos: make(map[primitive.ObjectID]models.Video)}
}

func (s *memoryVideoStore) List(_ context.Context, q database.VideoQuery) ([]models.VideoListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	return []models.VideoListItem{}, nil
}

func (s *memoryVideoStore) Create(_ context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	video.ID = primitive.NewObjectID()
	s.videos[video.ID] = *video
	return nil
}

func (s *memoryVideoStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &video, nil
}

func (s *memoryVideoStore) UpdateDetails(_ context.Context, id primitive.ObjectID, title, description, thumbnail string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	video, ok := s.videos[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	video.Title, video.Description, video.Thumbnail = title, description, thumbnail
	s.videos[id] = video
	return &video, nil
}

func (s *memoryVideoStore) SetPublished(_ context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return &video, nil
}

func (s *memoryVideoStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *memoryVideoStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.videos)
}

// fakeMedia hands out "mem://<path>" URLs and records every call.
type fakeMedia struct {
	mu sync.Mutex
	// stored holds the refs that currently exist.
	stored map[string]bool
	// failUpload and deleteResult are keyed by local path and ref.
	failUpload   map[string]bool
	deleteResult map[string]string
	duration     float64
	uploads      []string
	deletes      []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		stored:       make(map[string]bool),
		failUpload:   make(map[string]bool),
		deleteResult: make(map[string]string),
	}
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (media.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, localPath)
	if m.failUpload[localPath] {
		return media.Asset{}, errors.New("upload refused")
	}
	url := "mem://" + localPath
	m.stored[url] = true
	asset := media.Asset{URL: url, PublicID: localPath, ResourceType: media.ResourceTypeOf(localPath)}
	if asset.ResourceType == media.ResourceVideo {
		asset.Duration = m.duration
	}
	return asset, nil
}

func (m *fakeMedia) Delete(_ context.Context, ref string) (media.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, ref)
	if result, ok := m.deleteResult[ref]; ok {
		return media.DeleteResult{Result: result}, nil
	}
	if !m.stored[ref] {
		return media.DeleteResult{Result: media.ResultNotFound}, nil
	}
	delete(m.stored, ref)
	return media.DeleteResult{Result: media.ResultOK}, nil
}

func (m *fakeMedia) has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[ref]
}
