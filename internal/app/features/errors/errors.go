// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for full-page errors.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler serves the static error pages. No backend needed.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders the "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusForbidden, "error.page.forbidden", "error.forbidden", "/")
}

// Unauthorized renders the "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusUnauthorized, "error.page.unauthorized", "error.unauthorized", "/login")
}

// NotFound is the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusNotFound, "error.page.not_found", "error.not_found", "/")
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, titleKey, msgKey, backURL string) {
	data := newPageData(r, status, titleKey, msgKey, backURL)
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

func newPageData(r *http.Request, status int, titleKey, msgKey, backURL string) pageData {
	base := viewdata.NewBaseVM(r, titleKey, backURL)
	if backURL != "" {
		base.BackURL = backURL
	}
	return pageData{BaseVM: base, Status: status, Message: base.Tr.T(msgKey)}
}
