// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/features/login"
	"github.com/dalemusser/edusphere/internal/app/services/accounts"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Session keys for the in-flight OAuth round trip.
const (
	stateKey  = "oauth_state"
	returnKey = "oauth_return"
)

// Handler handles Google sign-in. Google proves the email; the account
// service decides which account (if any) it belongs to.
type Handler struct {
	Accounts   accounts.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://edusphere.example/auth/google/callback"

	// Overridable for tests.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(svc accounts.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:     svc,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  googleUserInfoURL,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, key string) {
	kind := apperr.KindUnauthorized
	if err != nil && apperr.KindOf(err) != apperr.KindUnknown {
		kind = apperr.KindOf(err)
	}
	h.ErrLog.Banner(w, r, msg, apperr.Error{Kind: kind, Key: key, Message: msg, Err: err}, "/login")
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin stores a random state in the session and redirects to
// Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.fail(w, r, "google sign-in not configured", nil, "auth.error.google_unavailable")
		return
	}
	state, err := generateState()
	if err != nil {
		h.fail(w, r, "generate oauth state failed", err, "error.unknown")
		return
	}

	sess := h.SessionMgr.Session(r)
	sess.Values[stateKey] = state
	sess.Values[returnKey] = urlutil.SafeReturn(query.Get(r, "return"), "", "/dashboard")
	if err := sess.Save(r, w); err != nil {
		h.fail(w, r, "save oauth state failed", err, "error.unknown")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("redirect_url", url))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.fail(w, r, "google oauth denied", fmt.Errorf("%s", errParam), "auth.error.google_denied")
		return
	}

	sess := h.SessionMgr.Session(r)
	want, _ := sess.Values[stateKey].(string)
	returnURL, _ := sess.Values[returnKey].(string)
	delete(sess.Values, stateKey)
	delete(sess.Values, returnKey)

	got := r.URL.Query().Get("state")
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		h.fail(w, r, "invalid oauth state", nil, "auth.error.google_state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.fail(w, r, "missing oauth code", nil, "auth.error.google_state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.fail(w, r, "oauth code exchange failed", apperr.Wrap(apperr.KindUnavailable, err, "token exchange"), "auth.error.google_unavailable")
		return
	}
	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.fail(w, r, "fetch google user info failed", apperr.Wrap(apperr.KindUnavailable, err, "user info"), "auth.error.google_unavailable")
		return
	}
	if !info.EmailVerified || info.Email == "" {
		h.fail(w, r, "google email not verified", nil, "auth.error.google_unverified")
		return
	}

	acct, err := h.Accounts.LookupByEmail(ctx, info.Email)
	if err != nil {
		key := apperr.LocalizationKey(err)
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindUnauthorized) {
			key = "auth.error.google_no_account"
		}
		h.fail(w, r, "google account lookup failed", err, key)
		return
	}

	if err := login.SignIn(w, r, h.SessionMgr, acct); err != nil {
		h.fail(w, r, "save session failed", err, "error.unknown")
		return
	}
	h.Log.Info("user signed in via Google",
		zap.String("user_id", acct.User.ID),
		zap.String("role", acct.User.Role))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"), http.StatusSeeOther)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
