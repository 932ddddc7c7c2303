package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube-api/internal/apierror"
	"videotube-api/internal/middleware"
	"videotube-api/internal/response"
)

// Dependencies wires the HTTP layer to the services it exposes.
type Dependencies struct {
	Users  UserService
	Videos VideoService
	Health HealthChecker

	Logger      *slog.Logger
	JWTSecret   string
	RateLimiter middleware.RateLimiter
	// UploadCost is the token cost of upload routes, charged per caller.
	UploadCost  int

	// StagingDir receives multipart uploads while a request is in flight.
	StagingDir     string
	MaxUploadBytes int64
	// MediaDir is served under /media when set.
	MediaDir string
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	if deps.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = deps.MaxUploadBytes
	}
	_ = router.SetTrustedProxies(nil)

	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	if deps.RateLimiter != nil {
		router.Use(middleware.RateLimit(deps.RateLimiter))
	}

	router.NoRoute(response.Handle(func(*gin.Context) (response.Result, error) {
		return response.Result{}, apierror.NotFound("Route not found")
	}))
	router.NoMethod(response.Handle(func(*gin.Context) (response.Result, error) {
		return response.Result{}, apierror.New(http.StatusMethodNotAllowed, "Method not allowed")
	}))

	router.GET("/healthz", response.Handle(Health(deps.Health)))
	if deps.MediaDir != "" {
		router.Static("/media", deps.MediaDir)
	}

	RegisterRoutes(router.Group("/api/v1"), deps)
	return router
}

// RegisterRoutes mounts the user and video endpoints on api.
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	users := UserHandler{Users: deps.Users, StagingDir: deps.StagingDir}
	videos := VideoHandler{Videos: deps.Videos, StagingDir: deps.StagingDir}
	limitBody := middleware.BodyLimit(deps.MaxUploadBytes)
	limitUploads := middleware.RateLimit(deps.RateLimiter,
		middleware.WithKey(middleware.CallerKey),
		middleware.WithCost(deps.UploadCost),
	)

	userRoutes := api.Group("/users")
	{
		userRoutes.POST("/register", limitUploads, limitBody, response.Handle(users.Register))
	}

	videoRoutes := api.Group("/videos")
	videoRoutes.Use(middleware.Auth(deps.JWTSecret))
	{
		videoRoutes.GET("", response.Handle(videos.List))
		videoRoutes.POST("", limitUploads, limitBody, response.Handle(videos.Publish))
		videoRoutes.GET("/:videoId", response.Handle(videos.Get))
		videoRoutes.PATCH("/:videoId", limitUploads, limitBody, response.Handle(videos.Update))
		videoRoutes.DELETE("/:videoId", response.Handle(videos.Delete))
		videoRoutes.PATCH("/toggle/publish/:videoId", response.Handle(videos.TogglePublish))
	}
}
