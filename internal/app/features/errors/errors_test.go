package errors_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newLogger(t *testing.T) (*uierrors.ErrorLogger, *observer.ObservedLogs, *flash.Flasher) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	f := flash.New(sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")), "test-session")
	return uierrors.NewErrorLogger(zap.New(core), f), logs, f
}

func TestBanner_RedirectsWithFlash(t *testing.T) {
	el, logs, f := newLogger(t)

	req := httptest.NewRequest(http.MethodPost, "/community/groups/g1/join", nil)
	rec := httptest.NewRecorder()
	err := apperr.EK(apperr.KindConflict, "community.error.group_full", "full")
	el.Banner(rec, req, "join study group failed", err, "/community/groups")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/community/groups" {
		t.Fatalf("redirect: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if logs.FilterMessage("join study group failed").FilterLevelExact(zap.WarnLevel).Len() != 1 {
		t.Errorf("expected one warn entry, got %v", logs.All())
	}

	next := httptest.NewRequest(http.MethodGet, "/community/groups", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	notices := f.Pop(httptest.NewRecorder(), next)
	if len(notices) != 1 || notices[0].Key != "community.error.group_full" || notices[0].Kind != flash.KindError {
		t.Errorf("flash: %+v", notices)
	}
}

func TestBanner_UnknownErrorsLogAtError(t *testing.T) {
	el, logs, _ := newLogger(t)
	rec := httptest.NewRecorder()
	el.Banner(rec, httptest.NewRequest(http.MethodPost, "/notes", nil), "create note failed", http.ErrHandlerTimeout, "/notes")

	if logs.FilterLevelExact(zap.ErrorLevel).Len() != 1 {
		t.Errorf("expected an error-level entry, got %v", logs.All())
	}
}

func TestLogServiceError_UnauthorizedRedirects(t *testing.T) {
	el, _, _ := newLogger(t)
	rec := httptest.NewRecorder()
	el.LogServiceError(rec, httptest.NewRequest(http.MethodGet, "/notes/n1", nil), "load note failed",
		apperr.E(apperr.KindUnauthorized, "token expired"), "/notes")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
