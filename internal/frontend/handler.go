package frontend

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/security"
	"github.com/gin-gonic/gin"
)

// Scorer predicts one sample on behalf of a named source
type Scorer interface {
	Score(ctx context.Context, source string, fv prediction.FeatureVector) (prediction.ScoreResult, error)
}

// Handler serves the HTML form and its result card
type Handler struct {
	tmpl   *template.Template
	scorer Scorer
}

// NewHandler parses the embedded template
func NewHandler(scorer Scorer) (*Handler, error) {
	tmpl, err := LoadIndexTemplate()
	if err != nil {
		return nil, err
	}
	return &Handler{tmpl: tmpl, scorer: scorer}, nil
}

// Index renders the form prefilled with the default measurements
func (h *Handler) Index(c *gin.Context) {
	data := newPage(nonceFor(c), prediction.DefaultFeatures().Values(), nil, nil)
	h.render(c, http.StatusOK, data)
}

// Submit predicts the posted sample and re-renders the form with the result card
func (h *Handler) Submit(c *gin.Context) {
	values := prediction.DefaultFeatures().Values()
	raw := make(map[string]string)
	fieldErrors := make(map[string]string)

	for i, key := range prediction.FeatureKeys {
		text, ok := c.GetPostForm(key)
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)

		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			raw[key] = text
			fieldErrors[key] = "enter a number"
			continue
		}
		values[i] = v
	}

	data := newPage(nonceFor(c), values, raw, fieldErrors)

	if len(fieldErrors) > 0 {
		appErr := apperrors.NewValidationErrorWithMap(fieldErrors)
		_ = c.Error(appErr)
		data.Error = "Please correct the highlighted fields."
		h.render(c, appErr.HTTPStatus, data)
		return
	}

	fv, err := prediction.FeatureVectorFromValues(values)
	if err != nil {
		h.fail(c, data, apperrors.NewInternalError("failed to assemble features", err))
		return
	}

	result, err := h.scorer.Score(c.Request.Context(), history.SourceForm, fv)
	if err != nil {
		h.fail(c, data, apperrors.ToAppError(err))
		return
	}

	data.Result = newResultView(result)
	h.render(c, http.StatusOK, data)
}

func (h *Handler) fail(c *gin.Context, data pageData, appErr *apperrors.AppError) {
	_ = c.Error(appErr)

	switch appErr.Category {
	case apperrors.CategoryComputation:
		data.Error = appErr.ErrBuilder.Msg
		if appErr.Field != "" {
			data.Columns = markField(data.Columns, appErr.Field, "value not usable by the model")
		}
	case apperrors.CategoryTimeout:
		data.Error = "The prediction took too long. Please try again."
	default:
		data.Error = "Something went wrong while scoring this sample."
	}

	h.render(c, statusOrDefault(appErr.HTTPStatus), data)
}

func (h *Handler) render(c *gin.Context, status int, data pageData) {
	if err := renderPage(c, h.tmpl, status, data); err != nil {
		slog.Error("Failed to render form page", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
	}
}

func markField(columns [][]fieldView, key, msg string) [][]fieldView {
	for _, col := range columns {
		for i := range col {
			if col[i].Key == key {
				col[i].Error = msg
			}
		}
	}
	return columns
}

// nonceFor returns the request's CSP nonce, generating one when the middleware is absent
func nonceFor(c *gin.Context) string {
	if nonce := security.GetNonce(c); nonce != "" {
		return nonce
	}

	slog.Warn("CSP nonce not found in context, generating new one")
	nonce, err := security.GenerateNonce()
	if err != nil {
		slog.Error("Failed to generate nonce", "error", err)
		return ""
	}
	return nonce
}
