package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

const (
	templateWelcome       = "welcome"
	templatePasswordReset = "password_reset"
	templateLeaveDecided  = "leave_decided"
)

type renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func newRenderer() (*renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &renderer{html: html, text: text}, nil
}

// render fills both bodies of msg from the named template pair.
func (r *renderer) render(name string, data interface{}, msg *Message) error {
	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return fmt.Errorf("render %s html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return fmt.Errorf("render %s text: %w", name, err)
	}
	msg.HTML = html.String()
	msg.Text = text.String()
	return nil
}
