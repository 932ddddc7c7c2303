package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"videotube-api/internal/config"
	"videotube-api/internal/logging"
)

// S3Client is the subset of the S3 API used for deletions.
type S3Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Uploader is the subset of manager.Uploader used for uploads.
type S3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store hosts media in an S3-compatible bucket.
type S3Store struct {
	client   S3Client
	uploader S3Uploader
	bucket   string
	baseURL  string
	prober   DurationProber
}

// NewS3Store configures an uploader targeting the provided object store.
func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig, prober DurationProber) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 media store: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBucketURL(cfg)
	}
	return NewS3StoreWithClients(client, uploader, cfg.Bucket, baseURL, prober), nil
}

// NewS3StoreWithClients builds a store around existing clients.
func NewS3StoreWithClients(client S3Client, uploader S3Uploader, bucket, baseURL string, prober DurationProber) *S3Store {
	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		prober:   prober,
	}
}

func defaultBucketURL(cfg config.ObjectStoreConfig) string {
	if endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		return endpoint + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload stores the file under "<resourceType>/<uuid><ext>" and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, localPath string) (Asset, error) {
	ext := strings.ToLower(filepath.Ext(localPath))
	resourceType := ResourceTypeOf(localPath)
	key := path.Join(resourceType, uuid.NewString()+ext)

	asset := Asset{PublicID: key, ResourceType: resourceType}
	if resourceType == ResourceVideo && s.prober != nil {
		duration, err := s.prober.Duration(ctx, localPath)
		if err != nil {
			logging.FromContext(ctx).Warn("could not probe video duration", "path", localPath, "error", err)
		}
		asset.Duration = duration
	}

	file, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("s3 media store open %s: %w", localPath, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType := contentTypeFor(ext); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return Asset{}, fmt.Errorf("s3 media store upload %s: %w", key, err)
	}

	asset.URL = s.baseURL + "/" + key
	return asset, nil
}

// Delete removes the object behind ref, which may be a public URL or a key.
// DeleteObject succeeds for absent keys, so the object is looked up first to
// report ResultNotFound the way LocalStore does.
func (s *S3Store) Delete(ctx context.Context, ref string) (DeleteResult, error) {
	key := s.keyFromRef(ref)
	if key == "" {
		return DeleteResult{}, fmt.Errorf("s3 media store: invalid reference %q", ref)
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return DeleteResult{Result: ResultNotFound}, nil
		}
		return DeleteResult{}, fmt.Errorf("s3 media store head %s: %w", key, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("s3 media store delete %s: %w", key, err)
	}
	return DeleteResult{Result: ResultOK}, nil
}

func isMissingObject(err error) bool {
	var notFound *s3types.NotFound
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

func contentTypeFor(ext string) string {
	if contentType, ok := videoContentTypes[ext]; ok {
		return contentType
	}
	return mime.TypeByExtension(ext)
}

func (s *S3Store) keyFromRef(ref string) string {
	if strings.HasPrefix(ref, s.baseURL+"/") {
		return strings.TrimPrefix(ref, s.baseURL+"/")
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.Host != "" {
		return strings.TrimPrefix(strings.TrimPrefix(parsed.Path, "/"+s.bucket), "/")
	}
	return strings.TrimLeft(ref, "/")
}
