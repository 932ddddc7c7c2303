// Package response shapes every API reply into the uniform JSON envelope.
//
// Handlers return a Result or an error and never write failures themselves;
// Handle is the boundary that maps both outcomes to HTTP.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube-api/internal/apierror"
	"videotube-api/internal/logging"
)

// Envelope is the success body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope is the failure body. Stack is only populated outside
// release mode.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
	Data       any      `json:"data"`
	Stack      string   `json:"stack,omitempty"`
}

type Result struct {
	Status  int
	Data    any
	Message string
}

func OK(data any, message string) Result {
	return Result{Status: http.StatusOK, Data: data, Message: message}
}

func Created(data any, message string) Result {
	return Result{Status: http.StatusCreated, Data: data, Message: message}
}

// HandlerFunc is a gin handler that reports its outcome instead of writing it.
type HandlerFunc func(c *gin.Context) (Result, error)

// Handle adapts fn to gin, writing the success or error envelope.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fn(c)
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, result)
	}
}

func Success(c *gin.Context, result Result) {
	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       result.Data,
		Message:    result.Message,
		Success:    status < http.StatusBadRequest,
	})
}

// Fail normalizes err and writes the error envelope, aborting the chain.
func Fail(c *gin.Context, err error) {
	apiErr := apierror.From(err)
	logger := logging.FromContext(c.Request.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "status", apiErr.StatusCode, "error", err)
	} else {
		logger.Warn("request rejected", "status", apiErr.StatusCode, "message", apiErr.Message)
	}

	details := apiErr.Errors
	if details == nil {
		details = []string{}
	}
	body := ErrorEnvelope{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     details,
		Data:       nil,
	}
	if gin.Mode() != gin.ReleaseMode {
		body.Stack = apiErr.Stack()
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, body)
}
