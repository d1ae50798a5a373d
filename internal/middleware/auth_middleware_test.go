package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teraturizm/transfer-admin/pkg/jwt"
)

const testSecret = "test-secret-key-123456789"

func setupTestJWTService() *jwt.Service {
	return jwt.NewService(testSecret, "transfer-admin", time.Hour)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestRouter(jwtService *jwt.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())

	handlers := []gin.HandlerFunc{AuthMiddleware(jwtService, quietLogger())}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "data": userCtx})
	})
	router.GET("/protected", handlers...)
	return router
}

type envelope struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	RequestID string          `json:"requestId"`
}

func doRequest(t *testing.T, router *gin.Engine, header string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter(jwtService)

	token, _, err := jwtService.GenerateToken(7, "admin@teraturizm.com", "ADMIN")
	require.NoError(t, err)

	w, body := doRequest(t, router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.OK)

	var user UserContext
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Equal(t, int64(7), user.UserID)
	assert.Equal(t, "admin@teraturizm.com", user.Email)
	assert.Equal(t, "ADMIN", user.Role)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter(jwtService)

	expired, _, err := jwt.NewService(testSecret, "transfer-admin", -time.Hour).GenerateToken(7, "admin@teraturizm.com", "ADMIN")
	require.NoError(t, err)
	foreign, _, err := jwt.NewService("another-secret-key-987654321", "transfer-admin", time.Hour).GenerateToken(7, "admin@teraturizm.com", "ADMIN")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER"},
		{"missing bearer", "some-token", "INVALID_AUTH_FORMAT"},
		{"wrong prefix", "Basic some-token", "INVALID_AUTH_FORMAT"},
		{"empty bearer", "Bearer ", "INVALID_AUTH_FORMAT"},
		{"no token", "Bearer", "INVALID_AUTH_FORMAT"},
		{"garbage token", "Bearer not.a.token", "INVALID_TOKEN"},
		{"wrong signature", "Bearer " + foreign, "INVALID_TOKEN"},
		{"expired token", "Bearer " + expired, "TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doRequest(t, router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, body.OK)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter(jwtService, "ADMIN")

	accountant, _, err := jwtService.GenerateToken(2, "muhasebe@teraturizm.com", "ACCOUNTANT")
	require.NoError(t, err)
	admin, _, err := jwtService.GenerateToken(1, "admin@teraturizm.com", "ADMIN")
	require.NoError(t, err)

	w, body := doRequest(t, router, "Bearer "+accountant)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", body.Code)

	w, body = doRequest(t, router, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.OK)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireRole("ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())
}
