package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		category   ErrorCategory
		httpStatus int
		message    string
	}{
		{
			name:       "validation error",
			err:        NewValidationError("bad body", "alcohol"),
			category:   CategoryValidation,
			httpStatus: http.StatusBadRequest,
			message:    "[VALIDATION_ERROR] bad body",
		},
		{
			name:       "computation error",
			err:        NewComputationError("chlorides must be positive", "chlorides", 0.0),
			category:   CategoryComputation,
			httpStatus: http.StatusUnprocessableEntity,
			message:    "[COMPUTATION_ERROR] chlorides must be positive",
		},
		{
			name:       "model load error includes cause",
			err:        NewModelLoadError("scaler", "/models/scaler.json", fmt.Errorf("no such file")),
			category:   CategoryModelLoad,
			httpStatus: http.StatusServiceUnavailable,
			message:    "[MODEL_LOAD_ERROR] failed to load scaler artifact from /models/scaler.json: no such file",
		},
		{
			name:       "rate limit error",
			err:        NewRateLimitError("60"),
			category:   CategoryRateLimit,
			httpStatus: http.StatusTooManyRequests,
			message:    "[RATE_LIMIT_EXCEEDED] Rate limit exceeded",
		},
		{
			name:       "unavailable error",
			err:        NewUnavailableError("prediction history", nil),
			category:   CategoryUnavailable,
			httpStatus: http.StatusServiceUnavailable,
			message:    "[UNAVAILABLE] prediction history is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestCategoryHelpers(t *testing.T) {
	computation := NewComputationError("sulphates must be positive", "sulphates", -1.0)
	load := NewModelLoadError("regressor", "regressor.json", nil)

	assert.True(t, IsComputation(computation))
	assert.False(t, IsModelLoad(computation))
	assert.True(t, IsModelLoad(load))

	wrapped := WrapError(computation, "predicting sample %d", 3)
	assert.True(t, IsComputation(wrapped))
	assert.False(t, IsComputation(fmt.Errorf("plain")))
	assert.False(t, IsComputation(nil))
}

func TestToAppError(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewValidationError("bad")
	assert.Same(t, original, ToAppError(original))
	assert.Same(t, original, ToAppError(fmt.Errorf("wrapped: %w", original)))

	builder := NewAppError(errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("custom"), CategoryInternal, 500)
	assert.Equal(t, "custom", builder.Msg)

	assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	assert.Equal(t, CategoryTimeout, ToAppError(context.Canceled).Category)
	assert.Equal(t, CategoryInternal, ToAppError(fmt.Errorf("boom")).Category)
}

func TestValidationErrorWithMap(t *testing.T) {
	err := NewValidationErrorWithMap(map[string]string{
		"alcohol": "not a number",
		"ph":      "not a number",
	})
	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestConfigurationError(t *testing.T) {
	cause := fmt.Errorf("strconv: bad digit")
	err := NewConfigurationError("RATE_LIMIT_PER_MIN must be positive, got 0", cause)

	assert.Equal(t, CategoryConfiguration, err.Category)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Equal(t, "CONFIGURATION_ERROR", err.Code())
	assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MIN")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CategoryConfiguration, ToAppError(WrapError(err, "loading config")).Category)
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewComputationError("density is not finite", "density", "NaN"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"computation"`)
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"internal"`)
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return fmt.Errorf("already closed")
}

func TestSafeClose(t *testing.T) {
	closer := &failingCloser{}
	SafeClose(closer, "test resource")
	assert.True(t, closer.closed)

	SafeClose(nil, "nil resource")
}
