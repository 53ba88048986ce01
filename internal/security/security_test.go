package security

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, int64(16*1024), config.MaxBodyBytes)
	assert.Contains(t, config.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, config.AllowedOrigins, "http://localhost:5173")
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
	assert.False(t, config.EnableHSTS)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		hsts bool
	}{
		{name: "without HSTS", hsts: false},
		{name: "with HSTS", hsts: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(SecurityHeadersMiddleware(tt.hsts))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
			assert.Equal(t, tt.hsts, w.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	r := gin.New()
	r.Use(sm.ValidateContentType)
	r.POST("/api/v1/predict", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		contentType string
		expected    int
	}{
		{name: "json", contentType: "application/json", expected: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", expected: http.StatusOK},
		{name: "form", contentType: "application/x-www-form-urlencoded", expected: http.StatusOK},
		{name: "multipart", contentType: "multipart/form-data; boundary=xyz", expected: http.StatusOK},
		{name: "no content type", contentType: "", expected: http.StatusOK},
		{name: "xml", contentType: "application/xml", expected: http.StatusUnsupportedMediaType},
		{name: "plain text", contentType: "text/plain", expected: http.StatusUnsupportedMediaType},
		{name: "garbage", contentType: ";;;", expected: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusUnsupportedMediaType {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "validation", body["category"])
			}
		})
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(SecurityConfig{MaxBodyBytes: 8})
	r := gin.New()
	r.Use(sm.LimitBody)
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too long for the limit")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(SecurityConfig{RequestTimeout: 5 * time.Second})
	r := gin.New()
	r.Use(sm.RequestTimeout)

	var deadline time.Time
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
	assert.Equal(t, "5", w.Header().Get("X-Timeout"))
}

func TestRequestTimeout_ContextCancelledAfterHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(SecurityConfig{RequestTimeout: time.Minute})
	r := gin.New()
	r.Use(sm.RequestTimeout)

	var ctx context.Context
	r.GET("/", func(c *gin.Context) {
		ctx = c.Request.Context()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	r := gin.New()
	r.Use(sm.CORS())
	r.POST("/api/v1/predict", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/predict", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/predict", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCSPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CSPMiddleware())

	var seen []string
	r.GET("/", func(c *gin.Context) {
		seen = append(seen, GetNonce(c))
		c.Status(http.StatusOK)
	})
	r.GET("/swagger/index.html", func(c *gin.Context) {
		seen = append(seen, GetNonce(c))
		c.Status(http.StatusOK)
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	require.Len(t, seen, 3)
	assert.NotEmpty(t, seen[0])
	assert.NotEqual(t, seen[0], seen[1], "nonce is per request")
	assert.Empty(t, seen[2])

	policy := w1.Header().Get("Content-Security-Policy")
	assert.Contains(t, policy, "'nonce-"+seen[0]+"'")
	assert.Contains(t, policy, "frame-ancestors 'none'")
	assert.Empty(t, w3.Header().Get("Content-Security-Policy"))
}

func TestGetNonce_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetNonce(c))
}
