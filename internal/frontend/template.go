package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/gin-gonic/gin"
)

// fieldLabels are the form labels, index-aligned with prediction.FeatureKeys
var fieldLabels = [prediction.NumFeatures]string{
	"Fixed Acidity",
	"Volatile Acidity",
	"Citric Acid",
	"Residual Sugar",
	"Chlorides",
	"Free Sulfur Dioxide",
	"Total Sulfur Dioxide",
	"Density",
	"pH",
	"Sulphates",
	"Alcohol",
}

// leftColumn is how many fields go in the first form column
const leftColumn = 5

type fieldView struct {
	Key   string
	Label string
	Value string
	Error string
}

type resultView struct {
	Score string
	Tier  string
	Rank  int
}

type pageData struct {
	Nonce   string
	Columns [][]fieldView
	Result  *resultView
	Error   string
}

// newPage lays out fields from the submitted (or default) values.
// raw overrides the displayed text for fields that failed to parse.
func newPage(nonce string, values []float64, raw map[string]string, fieldErrors map[string]string) pageData {
	fields := make([]fieldView, prediction.NumFeatures)
	for i, key := range prediction.FeatureKeys {
		value := strconv.FormatFloat(values[i], 'f', -1, 64)
		if text, ok := raw[key]; ok {
			value = text
		}
		fields[i] = fieldView{
			Key:   key,
			Label: fieldLabels[i],
			Value: value,
			Error: fieldErrors[key],
		}
	}

	return pageData{
		Nonce:   nonce,
		Columns: [][]fieldView{fields[:leftColumn], fields[leftColumn:]},
	}
}

func newResultView(result prediction.ScoreResult) *resultView {
	return &resultView{
		Score: strconv.FormatFloat(result.Score, 'f', 1, 64),
		Tier:  string(result.Tier),
		Rank:  result.Tier.Rank(),
	}
}

// renderPage renders the page with the given status and no-store caching headers
func renderPage(c *gin.Context, tmpl *template.Template, status int, data pageData) error {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// statusOrDefault keeps 2xx/4xx/5xx codes and maps anything unset to 500
func statusOrDefault(code int) int {
	if code < http.StatusOK {
		return http.StatusInternalServerError
	}
	return code
}
