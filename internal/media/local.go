package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"videotube-api/internal/logging"
)

// LocalStore keeps media on the local filesystem and serves it from baseURL.
type LocalStore struct {
	root    string
	baseURL string
	prober  DurationProber
}

// NewLocalStore creates root if needed. prober may be nil, in which case
// video durations are reported as zero.
func NewLocalStore(root, baseURL string, prober DurationProber) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("local media store: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		prober:  prober,
	}, nil
}

// Root is the directory media is written to.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Upload(ctx context.Context, localPath string) (Asset, error) {
	if localPath == "" {
		return Asset{}, errors.New("local media store: empty path")
	}
	resourceType := ResourceTypeOf(localPath)
	key := path.Join(resourceType, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))
	dst := filepath.Join(s.root, filepath.FromSlash(key))

	if err := copyFile(localPath, dst); err != nil {
		return Asset{}, fmt.Errorf("local media store upload %s: %w", key, err)
	}

	asset := Asset{
		URL:          s.baseURL + "/" + key,
		PublicID:     key,
		ResourceType: resourceType,
	}
	if resourceType == ResourceVideo && s.prober != nil {
		duration, err := s.prober.Duration(ctx, dst)
		if err != nil {
			logging.FromContext(ctx).Warn("could not probe video duration", "key", key, "error", err)
		}
		asset.Duration = duration
	}
	return asset, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) (DeleteResult, error) {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil {
		if os.IsNotExist(err) {
			return DeleteResult{Result: ResultNotFound}, nil
		}
		return DeleteResult{}, fmt.Errorf("local media store delete %s: %w", key, err)
	}
	return DeleteResult{Result: ResultOK}, nil
}

func (s *LocalStore) keyFromRef(ref string) (string, error) {
	key := strings.TrimPrefix(ref, s.baseURL)
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if key == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || path.IsAbs(cleaned) {
		return "", fmt.Errorf("local media store: invalid reference %q", ref)
	}
	return cleaned, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
