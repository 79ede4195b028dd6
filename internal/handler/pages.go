package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html static/*
var assetsFS embed.FS

// Pages renders the embedded HTML templates.
type Pages struct {
	tmpl *template.Template
}

// PageData is the data every template receives.
type PageData struct {
	Title    string
	Flash    string
	Username string
	Email    string
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{tmpl: tmpl}, nil
}

// Render writes the named template with status. The page is buffered so a template
// error never produces a half-written response.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
