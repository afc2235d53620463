// Package web holds the embedded HTML templates and the view engine that
// renders them.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/markdown"
)

//go:embed templates
var templateFS embed.FS

// Layout is the layout every page renders inside.
const Layout = "layouts/base"

// NewEngine builds the html engine over the embedded templates.
func NewEngine(renderer *markdown.Renderer) *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"markdown": renderer.Render,
		"date":     formatDate,
		"severity": func(s domain.Severity) string { return s.Label() },
		"severities": func() []domain.Severity {
			return domain.Severities
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	})
	return engine
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case *time.Time:
		return domain.FormatDate(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	}
	return ""
}
