package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/apierror"
	"videotube-api/internal/auth"
	"videotube-api/internal/response"
)

const (
	// UserIDKey holds the authenticated caller's ObjectID on the gin context.
	UserIDKey = "user_id"

	AccessTokenCookie = "accessToken"
)

// Auth verifies the caller's access token, taken from the Authorization
// bearer header or the accessToken cookie.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(AccessTokenCookie)
		}
		if token == "" {
			response.Fail(c, apierror.Unauthorized("Unauthorized request"))
			return
		}

		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			response.Fail(c, apierror.Unauthorized("Invalid access token"))
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Fail(c, apierror.Unauthorized("Invalid access token"))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CallerID returns the id stored by Auth.
func CallerID(c *gin.Context) (primitive.ObjectID, error) {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return primitive.NilObjectID, apierror.Unauthorized("Unauthorized request")
	}
	id, ok := value.(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, apierror.Unauthorized("Unauthorized request")
	}
	return id, nil
}
