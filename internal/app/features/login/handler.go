// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/services/accounts"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/edusphere/internal/app/system/ratelimit"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Accounts      accounts.Service
	SessionMgr    *auth.SessionManager
	Limiter       *ratelimit.LoginLimiter
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
}

func NewHandler(svc accounts.Service, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:      svc,
		SessionMgr:    sessionMgr,
		Limiter:       limiter,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	formutil.Base
	Login         string
	ReturnURL     string
	GoogleEnabled bool
}

type loginInput struct {
	Login    string `validate:"required,max=254" label:"auth.field.login"`
	Password string `validate:"required,max=512" label:"auth.field.password"`
}

var returnOpts = navigation.BackURLOptions{
	ExcludedSubpaths: []string{"/login", "/logout"},
	Fallback:         "/dashboard",
}

func (h *Handler) formData(r *http.Request, login string) loginFormData {
	data := loginFormData{
		Login:         login,
		ReturnURL:     navigation.SafeBackURL(r, returnOpts),
		GoogleEnabled: h.GoogleEnabled,
	}
	formutil.SetBase(&data.Base, r, "auth.login.title", "/")
	return data
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", h.formData(r, ""))
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/login")
		return
	}
	in := loginInput{
		Login:    strings.TrimSpace(r.FormValue("login")),
		Password: r.FormValue("password"),
	}
	data := h.formData(r, in.Login)

	if res := inputval.Validate(in); res.HasErrors() {
		data.ApplyResult(res)
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if ok, key := h.Limiter.Check(r, in.Login); !ok {
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("reason", key))
		data.SetError(key)
		h.render(w, r, http.StatusTooManyRequests, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.Authenticate(ctx, in.Login, in.Password)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind != apperr.KindUnauthorized && kind != apperr.KindForbidden && kind != apperr.KindUnavailable {
			h.ErrLog.LogServerError(w, r, "authenticate failed", err, "error.unknown", "/login")
			return
		}
		h.Log.Warn("login rejected", zap.String("kind", string(kind)), zap.Error(err))
		data.SetError(apperr.LocalizationKey(err))
		h.render(w, r, apperr.HTTPStatus(err), data)
		return
	}
	h.Limiter.Succeeded(in.Login)

	if err := SignIn(w, r, h.SessionMgr, acct); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "error.unknown", "/login")
		return
	}
	h.Log.Info("user signed in",
		zap.String("user_id", acct.User.ID),
		zap.String("role", acct.User.Role))
	http.Redirect(w, r, data.ReturnURL, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data loginFormData) {
	w.WriteHeader(status)
	templates.Render(w, r, "login", data)
}

// SignIn stores acct in the session. The account's saved locale wins over
// the one the visitor browsed with; without one the current locale is kept.
// Shared with the Google sign-in callback.
func SignIn(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, acct models.Account) error {
	locale := i18n.FromContext(r.Context()).Lang()
	if l, ok := i18n.Lookup(acct.User.Locale); ok {
		locale = l.Code
		i18n.SetLanguageCookie(w, l)
	}
	return sm.SignIn(w, r, auth.SessionUser{
		ID:     acct.User.ID,
		Name:   acct.User.FullName,
		Email:  acct.User.Email,
		Role:   models.NormalizeRole(acct.User.Role),
		Locale: locale,
		Token:  acct.Token,
	})
}
