// internal/app/features/locale/handler.go
package locale

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/services/accounts"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var errUnsupported = apperr.EK(apperr.KindInvalidInput, "locale.error.unsupported", "unsupported locale")

// Handler switches the UI language. The choice always lands in the
// language cookie; signed-in users also get it stored on their account.
type Handler struct {
	Accounts   accounts.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc accounts.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Accounts: svc, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

// ServeSwitch handles POST /locale.
func (h *Handler) ServeSwitch(w http.ResponseWriter, r *http.Request) {
	back := navigation.SafeBackURL(r, navigation.AnyLocal)

	loc, ok := i18n.Lookup(strings.TrimSpace(r.FormValue("lang")))
	if !ok {
		h.ErrLog.Banner(w, r, "locale switch rejected", errUnsupported, back)
		return
	}
	i18n.SetLanguageCookie(w, loc)

	h.Remember(w, r, loc)

	if r.Header.Get("HX-Request") == "true" {
		// Direction may flip, so the whole page has to reload.
		w.Header().Set("HX-Redirect", back)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Remember stores loc in the session and on the account of a signed-in
// user. Visitors are left to the language cookie. It also serves as the
// i18n middleware's hook for ?lang= choices.
func (h *Handler) Remember(w http.ResponseWriter, r *http.Request, loc i18n.Locale) {
	user, signedIn := auth.CurrentUser(r)
	if !signedIn || user.Locale == loc.Code {
		return
	}
	if err := h.SessionMgr.SetLocale(w, r, loc.Code); err != nil {
		h.Log.Warn("store locale in session", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	// The cookie already carries the choice; a failed account update only
	// means it will not follow the user to another browser.
	if err := h.Accounts.UpdateLocale(ctx, user.Viewer(), loc.Code); err != nil {
		h.Log.Warn("persist account locale",
			zap.String("user_id", user.ID),
			zap.String("locale", loc.Code),
			zap.Error(err))
	}
}
