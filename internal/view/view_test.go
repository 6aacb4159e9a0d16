package view

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/validation"
)

func mustTemplates(t *testing.T) *Templates {
	t.Helper()
	tmpl, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tmpl
}

func TestRenderIndex(t *testing.T) {
	t.Parallel()

	tmpl := mustTemplates(t)

	var buf bytes.Buffer
	err := tmpl.Render(&buf, PageIndex, IndexPage{
		MountPath: "/users",
		Users: []*model.User{
			{ID: "01HZX", Name: "Ana", Email: "ana@x.com", Password: "$2a$10$secrethash"},
		},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := buf.String()
	for _, want := range []string{"Ana", "ana@x.com", `/users/edit/01HZX`, `/users/delete/01HZX`, `action="/users/"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "secrethash") {
		t.Error("body leaks password hash")
	}
	if strings.Contains(body, `class="errors"`) {
		t.Error("empty error list should not render")
	}
}

func TestRenderIndex_ErrorsAndEcho(t *testing.T) {
	t.Parallel()

	tmpl := mustTemplates(t)

	var buf bytes.Buffer
	err := tmpl.Render(&buf, PageIndex, IndexPage{
		MountPath: "/users",
		Errors: validation.Errors{
			validation.NewFieldError(validation.FieldEmail, validation.CodeInvalidFormat),
		},
		Form:   FormValues{Name: "<b>Ana</b>", Email: "bad"},
		Notice: NoticeText(NoticeNotFound),
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := buf.String()
	if !strings.Contains(body, `data-field="email"`) {
		t.Error("expected email error item")
	}
	if !strings.Contains(body, "&lt;b&gt;Ana&lt;/b&gt;") {
		t.Error("expected echoed name to be escaped")
	}
	if !strings.Contains(body, "User not found") {
		t.Error("expected notice")
	}
	if !strings.Contains(body, "No users yet.") {
		t.Error("expected empty-state text")
	}
}

func TestRenderEdit(t *testing.T) {
	t.Parallel()

	tmpl := mustTemplates(t)

	var buf bytes.Buffer
	err := tmpl.Render(&buf, PageEdit, EditPage{
		MountPath: "/users",
		User:      &model.User{ID: "abc", Name: "Ana", Email: "ana@x.com"},
		Form:      FormValues{Name: "Ana", Email: "ana@x.com"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := buf.String()
	if !strings.Contains(body, `action="/users/update/abc"`) {
		t.Errorf("missing update action in %s", body)
	}
	if !strings.Contains(body, "<title>Edit Ana</title>") {
		t.Error("missing page title")
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	tmpl := mustTemplates(t)

	var buf bytes.Buffer
	err := tmpl.Render(&buf, PageError, ErrorPage{
		MountPath: "/users",
		Status:    http.StatusNotFound,
		Message:   "User not found",
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := buf.String()
	for _, want := range []string{"Not Found", "User not found", "req-1"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderUnknownPage(t *testing.T) {
	t.Parallel()

	tmpl := mustTemplates(t)
	if err := tmpl.Render(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestNoticeText(t *testing.T) {
	t.Parallel()

	if got := NoticeText(NoticeNotFound); got != "User not found" {
		t.Errorf("NoticeText(not_found) = %q", got)
	}
	if got := NoticeText("<script>"); got != "" {
		t.Errorf("NoticeText(unknown) = %q, want empty", got)
	}
}
