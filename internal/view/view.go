// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageIndex = "index.html"
	PageEdit  = "edit.html"
	PageError = "error.html"
)

// Notice codes carried in the list page query string.
const (
	NoticeNotFound = "not_found"
)

var notices = map[string]string{
	NoticeNotFound: "User not found",
}

// NoticeText returns the message for a notice code, or "" for unknown codes.
func NoticeText(code string) string {
	return notices[code]
}

// FormValues echoes submitted form fields back into a page. Passwords are
// never echoed.
type FormValues struct {
	Name  string
	Email string
}

// IndexPage is the data for the user list and create form.
type IndexPage struct {
	MountPath string
	Users     []*model.User
	Errors    validation.Errors
	Form      FormValues
	Notice    string
}

// EditPage is the data for the edit form.
type EditPage struct {
	MountPath string
	User      *model.User
	Errors    validation.Errors
	Form      FormValues
}

// ErrorPage is the data for the error page.
type ErrorPage struct {
	MountPath string
	Status    int
	Message   string
	RequestID string
}

// Title returns the status text for the page's status code.
func (p ErrorPage) Title() string {
	if text := http.StatusText(p.Status); text != "" {
		return text
	}
	return "Error"
}

// Renderer renders a named page.
type Renderer interface {
	Render(w io.Writer, page string, data any) error
}

// Templates is a Renderer backed by the embedded templates. Each page is
// parsed together with the shared layout.
type Templates struct {
	pages map[string]*template.Template
}

var _ Renderer = (*Templates)(nil)

// New parses all embedded pages.
func New() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template)}

	for _, page := range []string{PageIndex, PageEdit, PageError} {
		tmpl, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}

	return t, nil
}

// Render executes page with data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
