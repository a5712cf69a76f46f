package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey     = "is_authenticated"
	userIDKey     = "user_id"
	userNameKey   = "user_name"
	userEmailKey  = "user_email"
	userRoleKey   = "user_role"
	userLocaleKey = "user_locale"
	tokenKey      = "backend_token"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session & inject into r.Context().
// Token is the remote backend's bearer token (empty for the local backend).
type SessionUser struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Locale string
	Token  string
}

// Viewer is the identity service calls are made for.
func (u *SessionUser) Viewer() models.Viewer {
	if u == nil {
		return models.Viewer{}
	}
	return models.Viewer{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Locale: u.Locale,
		Token:  u.Token,
	}
}

// ViewerFrom returns the signed-in viewer, or the zero Viewer.
func ViewerFrom(r *http.Request) models.Viewer {
	u, _ := CurrentUser(r)
	return u.Viewer()
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// UserFromContext is CurrentUser for code that only holds a context.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// UserLocale returns the signed-in user's stored locale, or "".
func UserLocale(r *http.Request) string {
	if u, ok := CurrentUser(r); ok {
		return u.Locale
	}
	return ""
}

// WithTestUser injects u into the request context the way LoadSessionUser
// does. Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session store. The cookie is
// signed with sessionKey and encrypted with a key derived from it, since it
// carries the backend bearer token.
//
// In production (secure=true), cookies are Secure + SameSite=Lax.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if strings.TrimSpace(name) == "" {
		name = "edusphere-session"
	}

	blockKey := sha256.Sum256([]byte("edusphere-session-encryption:" + sessionKey))
	store := sessions.NewCookieStore([]byte(sessionKey), blockKey[:])
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying gorilla store (flash messages, OAuth state).
func (sm *SessionManager) Store() sessions.Store { return sm.store }

// Name is the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// Session returns the request's session, creating an empty one if the
// cookie is missing or cannot be decoded.
func (sm *SessionManager) Session(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sm.log.Debug("session decode failed; starting fresh", zap.Error(err))
	}
	return sess
}

// LoadSessionUser injects the user into context if they are logged in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.Session(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:     getString(sess, userIDKey),
				Name:   getString(sess, userNameKey),
				Email:  getString(sess, userEmailKey),
				Role:   getString(sess, userRoleKey),
				Locale: getString(sess, userLocaleKey),
				Token:  getString(sess, tokenKey),
			}
			if u.ID != "" {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn stores u in the session.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess := sm.Session(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = strings.ToLower(u.Role)
	sess.Values[userLocaleKey] = u.Locale
	sess.Values[tokenKey] = u.Token
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := sm.Session(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetLocale updates the signed-in user's locale in the session.
func (sm *SessionManager) SetLocale(w http.ResponseWriter, r *http.Request, locale string) error {
	sess := sm.Session(r)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}
	sess.Values[userLocaleKey] = locale
	return sess.Save(r, w)
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireRole ensures there is a user with one of the allowed roles.
// Wrong-role HTML callers are sent to /forbidden; API callers get 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if _, has := set[strings.ToLower(strings.TrimSpace(u.Role))]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
