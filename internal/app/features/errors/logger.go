// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and shows them to the user, either as
// a full error page, an inline HTMX banner, or a flash banner after a
// redirect.
type ErrorLogger struct {
	Log   *zap.Logger
	Flash *flash.Flasher
}

func NewErrorLogger(logger *zap.Logger, f *flash.Flasher) *ErrorLogger {
	return &ErrorLogger{Log: logger, Flash: f}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fs = append(fs, zap.Error(err), zap.String("kind", string(apperr.KindOf(err))))
	}
	return fs
}

// LogServerError logs at Error and renders a 500 page with the message
// for userKey.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userKey, backURL string) {
	e.Log.Error(msg, e.fields(r, err)...)
	e.page(w, r, http.StatusInternalServerError, userKey, backURL)
}

// LogBadRequest logs at Warn and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userKey, backURL string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	e.page(w, r, http.StatusBadRequest, userKey, backURL)
}

// LogForbidden logs at Warn and renders a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, err error, userKey, backURL string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	e.page(w, r, http.StatusForbidden, userKey, backURL)
}

// LogServiceError renders a page whose status follows the error's kind.
// Unauthorized callers are sent to the login page.
func (e *ErrorLogger) LogServiceError(w http.ResponseWriter, r *http.Request, msg string, err error, backURL string) {
	if apperr.Is(err, apperr.KindUnauthorized) {
		e.Log.Info(msg, e.fields(r, err)...)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		e.Log.Error(msg, e.fields(r, err)...)
	} else {
		e.Log.Warn(msg, e.fields(r, err)...)
	}
	e.page(w, r, status, apperr.LocalizationKey(err), backURL)
}

func (e *ErrorLogger) page(w http.ResponseWriter, r *http.Request, status int, userKey, backURL string) {
	if userKey == "" {
		userKey = "error.unknown"
	}
	data := newPageData(r, status, "error.page.title", userKey, backURL)
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// Banner is the usual way a rejected action surfaces: log, queue a
// dismissible banner and send the user back to retry. HTMX requests get
// the banner inline instead of a redirect.
func (e *ErrorLogger) Banner(w http.ResponseWriter, r *http.Request, msg string, err error, backURL string) {
	if apperr.KindOf(err) == apperr.KindUnknown {
		e.Log.Error(msg, e.fields(r, err)...)
	} else {
		e.Log.Warn(msg, e.fields(r, err)...)
	}
	if r.Header.Get("HX-Request") == "true" {
		e.renderBanner(w, r, apperr.LocalizationKey(err))
		return
	}
	if e.Flash != nil {
		if ferr := e.Flash.Add(w, r, flash.Error(apperr.LocalizationKey(err))); ferr != nil {
			e.Log.Warn("flash save failed", zap.Error(ferr))
		}
	}
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HTMXLogServerError logs at Error and answers an HTMX request with an
// out-of-band banner.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userKey string) {
	e.Log.Error(msg, e.fields(r, err)...)
	e.renderBanner(w, r, userKey)
}

// HTMXLogBadRequest logs at Warn and answers with an out-of-band banner.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userKey string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	e.renderBanner(w, r, userKey)
}

func (e *ErrorLogger) renderBanner(w http.ResponseWriter, r *http.Request, key string) {
	tr := i18n.FromContext(r.Context())
	notices := []viewdata.NoticeVM{{Kind: string(flash.KindError), Text: tr.T(key)}}
	// htmx only swaps 2xx responses by default.
	w.Header().Set("HX-Reswap", "none")
	templates.RenderSnippet(w, "banner_snippet", notices)
}
