package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/features/login"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/ratelimit"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
)

type fakeAccounts struct {
	calls int
}

func (f *fakeAccounts) Authenticate(_ context.Context, login, password string) (models.Account, error) {
	f.calls++
	if password != "pw" {
		return models.Account{}, apperr.EK(apperr.KindUnauthorized, "auth.error.invalid", "invalid")
	}
	return models.Account{
		User:  models.User{ID: "u-7", FullName: "Noor", Email: login, Role: "Teacher", Locale: "ar"},
		Token: "tok-7",
	}, nil
}

func (f *fakeAccounts) LookupByEmail(context.Context, string) (models.Account, error) {
	return models.Account{}, apperr.E(apperr.KindNotFound, "no")
}

func (f *fakeAccounts) UpdateLocale(context.Context, models.Viewer, string) error { return nil }

func newHandler(t *testing.T, perIP int) (*login.Handler, *fakeAccounts, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter(perIP, time.Minute)
	t.Cleanup(limiter.Stop)
	svc := &fakeAccounts{}
	return login.NewHandler(svc, sm, limiter, uierrors.NewErrorLogger(zap.NewNop(), nil), false, zap.NewNop()), svc, sm
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, _, sm := newHandler(t, 10)

	req := testutil.PostForm("/login", url.Values{"login": {"noor@example.com"}, "password": {"pw"}, "return": {"/notes"}})
	rec := testutil.Serve(h.HandleLoginPost, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/notes" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	var got *auth.SessionUser
	next := testutil.NewRequest("GET", "/notes")
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), next)

	if got == nil || got.Role != models.RoleTeacher || got.Locale != "ar" || got.Token != "tok-7" {
		t.Errorf("session user: %+v", got)
	}
}

func TestHandleLoginPost_RejectsEmptyFields(t *testing.T) {
	h, svc, _ := newHandler(t, 10)

	rec := testutil.Serve(h.HandleLoginPost, testutil.PostForm("/login", url.Values{"login": {"  "}, "password": {""}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if svc.calls != 0 {
		t.Error("service must not be called for an invalid form")
	}
}

func TestHandleLoginPost_BadPassword(t *testing.T) {
	h, _, _ := newHandler(t, 10)

	rec := testutil.Serve(h.HandleLoginPost, testutil.PostForm("/login", url.Values{"login": {"noor@example.com"}, "password": {"nope"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	h, svc, _ := newHandler(t, 2)

	form := url.Values{"login": {"noor@example.com"}, "password": {"nope"}}
	var last int
	for i := 0; i < 3; i++ {
		last = testutil.Serve(h.HandleLoginPost, testutil.PostForm("/login", form)).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third attempt: got %d, want %d", last, http.StatusTooManyRequests)
	}
	if svc.calls != 1 {
		t.Errorf("service calls: got %d, want 1 (account limit is half the IP limit)", svc.calls)
	}
}

func TestServeLogin_SignedInRedirects(t *testing.T) {
	h, _, _ := newHandler(t, 10)
	req := testutil.WithUser(testutil.NewRequest("GET", "/login"), testutil.StudentUser())

	rec := testutil.Serve(h.ServeLogin, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
