package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"videotube-api/internal/apierror"
	"videotube-api/internal/response"
)

// Health handles GET /healthz by pinging the database.
func Health(check HealthChecker) response.HandlerFunc {
	return func(c *gin.Context) (response.Result, error) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				return response.Result{}, apierror.Wrap(http.StatusServiceUnavailable, "database unavailable", err)
			}
		}
		return response.OK(gin.H{"status": "ok"}, "OK"), nil
	}
}
