// Package web embeds the HTML views and builds the template set used by gin.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are available to every view.
var Funcs = template.FuncMap{
	"yield": FormatYield,
}

// FormatYield renders a yield the way the result page shows it.
func FormatYield(y float64) string {
	return fmt.Sprintf("%.2f tons/hectare", y)
}

// LoadTemplates parses every embedded view. Each page template is named after its file.
func LoadTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
