// Package web embeds the HTML templates and static assets of the classroom UI.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template with the shared helpers.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// MustTemplates panics when the embedded templates do not parse.
func MustTemplates() *template.Template {
	tmpl, err := Templates()
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Static serves the embedded static directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Funcs are the helpers available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"pct": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 1, 64) + "%"
		},
		"day": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"isoDay": func(t time.Time) string {
			return t.Format(models.DateLayout)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}
