package frontend

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/index.html
var templatesFS embed.FS

// LoadIndexTemplate parses the embedded form page
func LoadIndexTemplate() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}
