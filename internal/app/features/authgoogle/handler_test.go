package authgoogle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/edusphere/internal/app/features/authgoogle"
	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeAccounts struct {
	known map[string]models.Account
}

func (f *fakeAccounts) Authenticate(context.Context, string, string) (models.Account, error) {
	return models.Account{}, apperr.E(apperr.KindUnauthorized, "unused")
}

func (f *fakeAccounts) LookupByEmail(_ context.Context, email string) (models.Account, error) {
	if a, ok := f.known[email]; ok {
		return a, nil
	}
	return models.Account{}, apperr.E(apperr.KindNotFound, "no account")
}

func (f *fakeAccounts) UpdateLocale(context.Context, models.Viewer, string) error { return nil }

// googleStub serves the token and userinfo endpoints.
func googleStub(t *testing.T, email string, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"id":             "g-1",
			"email":          email,
			"verified_email": verified,
			"name":           "Lina",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(t *testing.T, srv *httptest.Server, accts *fakeAccounts) (*authgoogle.Handler, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := authgoogle.NewHandler(accts, sm, uierrors.NewErrorLogger(zap.NewNop(), nil), "client", "secret", "http://localhost:8080", zap.NewNop())
	if srv != nil {
		h.Endpoint = oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
		h.UserInfoURL = srv.URL + "/userinfo"
	}
	return h, sm
}

// begin runs ServeLogin and returns the state and session cookies.
func begin(t *testing.T, h *authgoogle.Handler, ret string) (string, []*http.Cookie) {
	t.Helper()
	rec := testutil.Serve(h.ServeLogin, testutil.NewRequest("GET", "/auth/google?return="+url.QueryEscape(ret)))
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("ServeLogin status: got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("redirect carries no state")
	}
	if got := loc.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/google/callback" {
		t.Errorf("redirect_uri: got %q", got)
	}
	return state, rec.Result().Cookies()
}

func callback(h *authgoogle.Handler, query string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := testutil.NewRequest("GET", "/auth/google/callback?"+query)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return testutil.Serve(h.ServeCallback, req)
}

func TestIsConfigured(t *testing.T) {
	h, _ := newHandler(t, nil, &fakeAccounts{})
	if !h.IsConfigured() {
		t.Error("expected configured with client id and secret")
	}
	h.ClientSecret = ""
	if h.IsConfigured() {
		t.Error("expected not configured without a secret")
	}
}

func TestServeLogin_NotConfiguredRedirectsToLogin(t *testing.T) {
	h, _ := newHandler(t, nil, &fakeAccounts{})
	h.ClientID = ""

	rec := testutil.Serve(h.ServeLogin, testutil.NewRequest("GET", "/auth/google"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCallback_SignsInKnownAccount(t *testing.T) {
	srv := googleStub(t, "lina@example.com", true)
	accts := &fakeAccounts{known: map[string]models.Account{
		"lina@example.com": {User: models.User{ID: "u-9", FullName: "Lina", Email: "lina@example.com", Role: models.RoleParent, Locale: "fr"}, Token: "tok-9"},
	}}
	h, sm := newHandler(t, srv, accts)

	state, cookies := begin(t, h, "/inbox")
	rec := callback(h, "state="+url.QueryEscape(state)+"&code=abc", cookies)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/inbox" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	var got *auth.SessionUser
	next := testutil.NewRequest("GET", "/inbox")
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Name() {
			next.AddCookie(c)
		}
	}
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), next)
	if got == nil || got.ID != "u-9" || got.Token != "tok-9" {
		t.Errorf("session user: %+v", got)
	}
}

func TestCallback_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		verified bool
		query    func(state string) string
	}{
		{"provider error", "lina@example.com", true, func(string) string { return "error=access_denied" }},
		{"state mismatch", "lina@example.com", true, func(string) string { return "state=forged&code=abc" }},
		{"missing code", "lina@example.com", true, func(s string) string { return "state=" + url.QueryEscape(s) }},
		{"unverified email", "lina@example.com", false, func(s string) string { return "state=" + url.QueryEscape(s) + "&code=abc" }},
		{"unknown account", "stranger@example.com", true, func(s string) string { return "state=" + url.QueryEscape(s) + "&code=abc" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := googleStub(t, tc.email, tc.verified)
			accts := &fakeAccounts{known: map[string]models.Account{
				"lina@example.com": {User: models.User{ID: "u-9", Role: models.RoleParent}, Token: "tok-9"},
			}}
			h, _ := newHandler(t, srv, accts)

			state, cookies := begin(t, h, "/dashboard")
			rec := callback(h, tc.query(state), cookies)

			if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/login") {
				t.Errorf("got %d %q, want redirect to /login", rec.Code, rec.Header().Get("Location"))
			}
		})
	}
}
