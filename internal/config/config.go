package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	MediaLocal = "local"
	MediaS3    = "s3"
)

// Config captures the runtime configuration for the API server.
type Config struct {
	AppEnv     string
	ServerPort int
	LogLevel   string
	LogFormat  string

	DatabaseDriver string
	MongoURI       string
	MongoDatabase  string
	SQLitePath     string

	MediaDriver    string
	StagingPath    string
	MediaLocalPath string
	MediaBaseURL   string
	ObjectStore    ObjectStoreConfig
	FFProbePath    string
	FFProbeTimeout time.Duration

	JWTSecret      string
	MaxUploadBytes int64
	CORSOrigins    []string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
	// UploadRateCost is charged per upload request on top of the global limit.
	UploadRateCost    int
}

// ObjectStoreConfig configures the S3-compatible media store.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// IsProduction reports whether stack traces and debug output must be hidden.
func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads configuration from the environment, after applying a .env file
// when one is present in the working directory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppEnv:     strings.ToLower(getString("APP_ENV", EnvDevelopment)),
		ServerPort: getInt("SERVER_PORT", 8080),
		LogLevel:   getString("LOG_LEVEL", "info"),
		LogFormat:  getString("LOG_FORMAT", "json"),

		DatabaseDriver: strings.ToLower(getString("DATABASE_DRIVER", DriverMongo)),
		MongoURI:       getString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getString("MONGODB_DATABASE", "videotube"),
		SQLitePath:     getString("SQLITE_DB_PATH", "videotube.db"),

		MediaDriver:    strings.ToLower(getString("MEDIA_DRIVER", MediaLocal)),
		StagingPath:    getString("STORAGE_PATH", "storage/tmp"),
		MediaLocalPath: getString("MEDIA_LOCAL_PATH", "storage/media"),
		MediaBaseURL:   getString("MEDIA_PUBLIC_BASE_URL", "http://localhost:8080/media"),
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("S3_BUCKET", ""),
			Region:        getString("S3_REGION", "us-east-1"),
			Endpoint:      getString("S3_ENDPOINT", ""),
			PublicBaseURL: getString("S3_PUBLIC_BASE_URL", ""),
		},
		FFProbePath:    getString("FFPROBE_PATH", "ffprobe"),
		FFProbeTimeout: getDuration("FFPROBE_TIMEOUT", 30*time.Second),

		JWTSecret:      getString("JWT_SECRET", ""),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 100)) << 20,
		CORSOrigins:    getList("CORS_ORIGIN", "http://localhost:3000"),

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", 20),
		UploadRateCost:    getInt("RATE_LIMIT_UPLOAD_COST", 5),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.DatabaseDriver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.MediaDriver {
	case MediaLocal:
	case MediaS3:
		if strings.TrimSpace(c.ObjectStore.Bucket) == "" {
			return errors.New("config: S3_BUCKET is required when MEDIA_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: unknown MEDIA_DRIVER %q", c.MediaDriver)
	}
	return nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getList splits a comma-separated setting, dropping blanks and trailing slashes.
func getList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getString(key, fallback), ",") {
		if item := strings.TrimRight(strings.TrimSpace(part), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", value)
		return fallback
	}
	return d
}
