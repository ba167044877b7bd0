package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"devis/internal/pricing"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateOperator  = "operator.html"
	TemplateClient    = "client.html"
	TemplateStatus    = "status.html"
	TemplateSignature = "signature.html"
)

var parisLocation = loadParis()

func loadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}

var funcs = template.FuncMap{
	"eur": pricing.FormatEUR,
	"date": func(t time.Time) string {
		return t.In(parisLocation).Format("02/01/2006")
	},
	"datetime": func(t time.Time) string {
		return t.In(parisLocation).Format("02/01/2006 15:04")
	},
}

// Renderer executes the embedded HTML email templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("devis").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
