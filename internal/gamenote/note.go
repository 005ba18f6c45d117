package gamenote

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"text/template"
)

//go:embed templates/note.md.tmpl
var defaultNoteTemplate string

// Template renders notes from Variables.
type Template struct {
	tmpl *template.Template
}

// DefaultTemplate returns the built-in markdown note template.
func DefaultTemplate() *Template {
	return &Template{tmpl: template.Must(template.New("note").Parse(defaultNoteTemplate))}
}

// ParseTemplate parses a note template. Fields are referenced as {{ .Name }}, {{ .Cover }}, ...
func ParseTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing note template %s: %w", name, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// LoadTemplate reads and parses a note template file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading note template: %w", err)
	}
	return ParseTemplate(path, string(data))
}

// Render writes the note for vars to w.
func (t *Template) Render(w io.Writer, vars Variables) error {
	if err := t.tmpl.Execute(w, vars); err != nil {
		return fmt.Errorf("rendering note: %w", err)
	}
	return nil
}
