package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/middleware"
	"github.com/teraturizm/transfer-admin/internal/services"
)

// Response is the envelope of every JSON body
type Response struct {
	OK         bool              `json:"ok"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	RetryAfter *time.Time        `json:"retryAfter,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
}

var statusByCode = map[string]int{
	services.CodeValidation:   http.StatusBadRequest,
	services.CodeUnauthorized: http.StatusUnauthorized,
	services.CodeForbidden:    http.StatusForbidden,
	services.CodeNotFound:     http.StatusNotFound,
	services.CodeConflict:     http.StatusConflict,
	services.CodeRateLimited:  http.StatusTooManyRequests,
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{OK: true, Data: data})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		OK:        false,
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// respondError maps a service error to its status. Unknown errors become a
// generic 500 and are logged with the request id.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	code := services.ErrorCode(err)
	status, known := statusByCode[code]
	if !known {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		}).Error("Request failed")
		respondFailure(c, http.StatusInternalServerError, services.CodeInternal, "internal server error")
		return
	}

	resp := Response{
		OK:        false,
		Error:     err.Error(),
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		resp.Fields = validationErr.Fields
	}

	var rateLimitErr *services.RateLimitError
	if errors.As(err, &rateLimitErr) {
		retryAfter := rateLimitErr.RetryAfter
		resp.RetryAfter = &retryAfter
		if seconds := int(time.Until(retryAfter).Seconds()); seconds > 0 {
			c.Header("Retry-After", strconv.Itoa(seconds))
		}
	}

	c.AbortWithStatusJSON(status, resp)
}

func respondInvalidBody(c *gin.Context) {
	respondFailure(c, http.StatusBadRequest, services.CodeValidation, "invalid request body")
}
