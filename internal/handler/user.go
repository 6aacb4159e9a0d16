package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/useradmin/useradmin/internal/middleware"
	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/service"
	"github.com/useradmin/useradmin/internal/validation"
	"github.com/useradmin/useradmin/internal/view"
)

// Form field names.
const (
	formName     = "name"
	formEmail    = "email"
	formPassword = "password"
)

const msgUserNotFound = "User not found"

// UserHandler handles the user list, create, edit, update and delete pages.
type UserHandler struct {
	svc       *service.UserService
	renderer  view.Renderer
	mountPath string
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler. mountPath is the prefix the
// routes are mounted under, e.g. "/users".
func NewUserHandler(svc *service.UserService, renderer view.Renderer, mountPath string, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:       svc,
		renderer:  renderer,
		mountPath: mountPath,
		logger:    logger,
	}
}

// Routes returns a router with the user routes relative to the mount path.
// middlewares wrap every user route.
func (h *UserHandler) Routes(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/edit/{id}", h.EditForm)
	r.Post("/update/{id}", h.Update)
	r.Get("/delete/{id}", h.Delete)
	return r
}

// List handles GET /.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageIndex, view.IndexPage{
		MountPath: h.mountPath,
		Users:     users,
		Notice:    view.NoticeText(r.URL.Query().Get("notice")),
	})
}

// Create handles POST /.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	input := service.CreateUserInput{
		Name:     r.PostFormValue(formName),
		Email:    r.PostFormValue(formEmail),
		Password: r.PostFormValue(formPassword),
	}

	_, err := h.svc.CreateUser(r.Context(), input)
	if err == nil {
		h.redirectToList(w, r, "")
		return
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		h.handleServiceError(w, r, err)
		return
	}

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageIndex, view.IndexPage{
		MountPath: h.mountPath,
		Users:     users,
		Errors:    verrs,
		Form:      view.FormValues{Name: input.Name, Email: input.Email},
	})
}

// EditForm handles GET /edit/{id}.
func (h *UserHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageEdit, view.EditPage{
		MountPath: h.mountPath,
		User:      user,
		Form:      view.FormValues{Name: user.Name, Email: user.Email},
	})
}

// Update handles POST /update/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	patch := patchFromForm(r.PostForm)

	_, err := h.svc.UpdateUser(r.Context(), id, patch)
	if err == nil {
		h.redirectToList(w, r, "")
		return
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		h.handleServiceError(w, r, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	form := view.FormValues{Name: user.Name, Email: user.Email}
	if patch.Name != nil {
		form.Name = *patch.Name
	}
	if patch.Email != nil {
		form.Email = *patch.Email
	}

	h.render(w, r, http.StatusOK, view.PageEdit, view.EditPage{
		MountPath: h.mountPath,
		User:      user,
		Errors:    verrs,
		Form:      form,
	})
}

// Delete handles GET /delete/{id}. An absent id still redirects to the
// list, with a notice.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUserID(id); err != nil {
		h.redirectToList(w, r, view.NoticeNotFound)
		return
	}

	err := h.svc.DeleteUser(r.Context(), id)
	switch {
	case err == nil:
		h.redirectToList(w, r, "")
	case errors.Is(err, service.ErrUserNotFound):
		h.redirectToList(w, r, view.NoticeNotFound)
	default:
		h.handleServiceError(w, r, err)
	}
}

// patchFromForm marks a field present when its key was submitted. An empty
// password box leaves the stored hash untouched.
func patchFromForm(form url.Values) model.UserPatch {
	var patch model.UserPatch
	if _, ok := form[formName]; ok {
		name := form.Get(formName)
		patch.Name = &name
	}
	if _, ok := form[formEmail]; ok {
		email := form.Get(formEmail)
		patch.Email = &email
	}
	if password := form.Get(formPassword); password != "" {
		patch.Password = &password
	}
	return patch
}

func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateUserID(id); err != nil {
		h.renderError(w, r, http.StatusNotFound, msgUserNotFound)
		return "", false
	}
	return id, true
}

func (h *UserHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseForm()
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.renderError(w, r, http.StatusRequestEntityTooLarge, "The submitted form is too large")
		return false
	}
	h.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read")
	return false
}

func (h *UserHandler) redirectToList(w http.ResponseWriter, r *http.Request, notice string) {
	target := h.mountPath + "/"
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.renderError(w, r, http.StatusNotFound, msgUserNotFound)
	default:
		h.logger.ErrorContext(r.Context(), "user request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

func (h *UserHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	renderPage(w, r, h.renderer, h.logger, status, page, data)
}

func (h *UserHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderError(w, r, h.renderer, h.logger, h.mountPath, status, message)
}
