package media

import (
	"context"
	"sync"

	"videotube-api/internal/logging"
)

// Scope tracks assets uploaded during one unit of work so they can be
// removed again if a later step fails.
type Scope struct {
	store  Store
	mu     sync.Mutex
	assets []Asset
}

func NewScope(store Store) *Scope {
	return &Scope{store: store}
}

// Upload uploads localPath and remembers the resulting asset.
func (s *Scope) Upload(ctx context.Context, localPath string) (Asset, error) {
	asset, err := s.store.Upload(ctx, localPath)
	if err != nil {
		return Asset{}, err
	}
	if asset.URL != "" {
		s.mu.Lock()
		s.assets = append(s.assets, asset)
		s.mu.Unlock()
	}
	return asset, nil
}

// Rollback deletes every tracked asset, best effort. Failures are logged,
// not returned, so the original error can surface to the caller.
func (s *Scope) Rollback(ctx context.Context) {
	s.mu.Lock()
	assets := s.assets
	s.assets = nil
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContext(ctx)
	for _, asset := range assets {
		result, err := s.store.Delete(ctx, asset.URL)
		if err != nil {
			logger.Error("failed to roll back uploaded asset", "url", asset.URL, "error", err)
			continue
		}
		if !result.OK() {
			logger.Warn("rollback did not remove uploaded asset", "url", asset.URL, "result", result.Result)
		}
	}
}

// Commit keeps the tracked assets; a later Rollback becomes a no-op.
func (s *Scope) Commit() {
	s.mu.Lock()
	s.assets = nil
	s.mu.Unlock()
}

// Pending returns the assets that a Rollback would remove.
func (s *Scope) Pending() []Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Asset(nil), s.assets...)
}
