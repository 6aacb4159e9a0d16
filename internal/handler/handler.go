// Package handler provides HTTP request handlers.
package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/useradmin/useradmin/internal/middleware"
	"github.com/useradmin/useradmin/internal/view"
)

// Handler serves the pages shared by every route: the root redirect and
// the 404/405 fallbacks.
type Handler struct {
	renderer  view.Renderer
	mountPath string
	logger    *slog.Logger
}

// New creates a new Handler instance.
func New(renderer view.Renderer, mountPath string, logger *slog.Logger) *Handler {
	return &Handler{
		renderer:  renderer,
		mountPath: mountPath,
		logger:    logger,
	}
}

// Root redirects to the user list.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.mountPath+"/", http.StatusSeeOther)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "resource not found"})
		return
	}
	renderError(w, r, h.renderer, h.logger, h.mountPath, http.StatusNotFound, "Page not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	renderError(w, r, h.renderer, h.logger, h.mountPath, http.StatusMethodNotAllowed, "Method not allowed")
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// renderPage renders into a buffer first so a template failure never sends
// a half-written page with a success status.
func renderPage(w http.ResponseWriter, r *http.Request, renderer view.Renderer, logger *slog.Logger, status int, page string, data any) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, page, data); err != nil {
		logger.ErrorContext(r.Context(), "render failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"page", page,
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderError(w http.ResponseWriter, r *http.Request, renderer view.Renderer, logger *slog.Logger, mountPath string, status int, message string) {
	renderPage(w, r, renderer, logger, status, view.PageError, view.ErrorPage{
		MountPath: mountPath,
		Status:    status,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
