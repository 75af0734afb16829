package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crudio/crudio/internal/shared"
	"github.com/crudio/crudio/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// NewEngine parses the embedded templates. locale is a BCP 47 tag used for
// number formatting; an unknown tag falls back to English.
func NewEngine(locale string) (*Engine, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	funcMap := template.FuncMap{
		"formatMoney": func(v float64) string {
			return printer.Sprintf("%.2f", v)
		},
		"formatNumber": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"toJSON": func(v any) (string, error) {
			raw, err := json.Marshal(v)
			return string(raw), err
		},
		"inc": func(i int) int { return i + 1 },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData and writes it with
// status. Nothing is written when execution fails.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
