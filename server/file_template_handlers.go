package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return template.New(name).Parse(string(content))
}

type templates struct {
	index         *template.Template
	admin         *template.Template
	contactResult *template.Template
}

func parseTemplates() (templates, error) {
	var t templates
	var err error
	if t.index, err = ParseTemplate("index.html"); err != nil {
		return t, err
	}
	if t.admin, err = ParseTemplate("admin.html"); err != nil {
		return t, err
	}
	if t.contactResult, err = ParseTemplate("contact_result.html"); err != nil {
		return t, err
	}
	return t, nil
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Str("template", tmpl.Name()).Msg("render failed")
	}
}
