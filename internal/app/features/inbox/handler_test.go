package inbox_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	"github.com/dalemusser/edusphere/internal/app/features/inbox"
	"github.com/dalemusser/edusphere/internal/app/services/messaging"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
)

type fakeMessaging struct {
	conv     models.Conversation
	started  []messaging.StartInput
	sent     []string
	marked   []string
	startErr error
	sendErr  error
}

func (f *fakeMessaging) ListConversations(context.Context, models.Viewer) ([]models.Conversation, error) {
	return []models.Conversation{f.conv}, nil
}

func (f *fakeMessaging) GetConversation(_ context.Context, _ models.Viewer, id string) (models.Conversation, error) {
	if id != f.conv.ID {
		return models.Conversation{}, apperr.E(apperr.KindNotFound, "no such conversation")
	}
	return f.conv, nil
}

func (f *fakeMessaging) StartConversation(_ context.Context, _ models.Viewer, in messaging.StartInput) (models.Conversation, error) {
	if f.startErr != nil {
		return models.Conversation{}, f.startErr
	}
	f.started = append(f.started, in)
	return models.Conversation{ID: "c-new"}, nil
}

func (f *fakeMessaging) SendMessage(_ context.Context, v models.Viewer, _ string, body string) (models.Message, error) {
	if f.sendErr != nil {
		return models.Message{}, f.sendErr
	}
	f.sent = append(f.sent, body)
	return models.Message{ID: "m-1", SenderID: v.ID, Body: body}, nil
}

func (f *fakeMessaging) MarkRead(_ context.Context, _ models.Viewer, id string) error {
	f.marked = append(f.marked, id)
	return nil
}

func newHandler(svc messaging.Service) *inbox.Handler {
	return inbox.NewHandler(svc, uierrors.NewErrorLogger(zap.NewNop(), nil), zap.NewNop())
}

func TestHandleStart(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		startErr error
		status   int
		location string
	}{
		{"empty recipient", url.Values{"body": {"hi"}}, nil, http.StatusUnprocessableEntity, ""},
		{"bad email", url.Values{"recipient": {"nope"}, "body": {"hi"}}, nil, http.StatusUnprocessableEntity, ""},
		{"empty body", url.Values{"recipient": {"a@example.com"}, "body": {"   "}}, nil, http.StatusUnprocessableEntity, ""},
		{"unknown recipient", url.Values{"recipient": {"ghost@example.com"}, "body": {"hi"}},
			apperr.EK(apperr.KindNotFound, "inbox.error.unknown_recipient", "no user"), http.StatusUnprocessableEntity, ""},
		{"backend down", url.Values{"recipient": {"a@example.com"}, "body": {"hi"}},
			apperr.E(apperr.KindUnavailable, "down"), http.StatusSeeOther, "/inbox/new"},
		{"ok", url.Values{"recipient": {" A@Example.com "}, "body": {"hi"}}, nil, http.StatusSeeOther, "/inbox/c-new"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeMessaging{startErr: tc.startErr}
			h := newHandler(svc)
			req := testutil.WithUser(testutil.PostForm("/inbox", tc.form), testutil.ParentUser())

			rec := testutil.Serve(h.HandleStart, req)
			if rec.Code != tc.status {
				t.Errorf("status: got %d, want %d", rec.Code, tc.status)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Errorf("location: got %q, want %q", rec.Header().Get("Location"), tc.location)
			}
			if tc.name == "ok" && svc.started[0].RecipientEmail != "a@example.com" {
				t.Errorf("recipient not normalized: %q", svc.started[0].RecipientEmail)
			}
		})
	}
}

func TestServeThread_MarksUnreadRead(t *testing.T) {
	svc := &fakeMessaging{conv: models.Conversation{ID: "c-1", Unread: 2}}
	h := newHandler(svc)
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest("GET", "/inbox/c-1"), testutil.StudentUser()), "id", "c-1")

	testutil.Serve(h.ServeThread, req)
	if len(svc.marked) != 1 || svc.marked[0] != "c-1" {
		t.Errorf("marked: %v", svc.marked)
	}
}

func TestServeThread_ReadThreadNotMarkedAgain(t *testing.T) {
	svc := &fakeMessaging{conv: models.Conversation{ID: "c-1"}}
	h := newHandler(svc)
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest("GET", "/inbox/c-1"), testutil.StudentUser()), "id", "c-1")

	testutil.Serve(h.ServeThread, req)
	if len(svc.marked) != 0 {
		t.Errorf("marked: %v", svc.marked)
	}
}

func TestServeThread_NotFound(t *testing.T) {
	h := newHandler(&fakeMessaging{conv: models.Conversation{ID: "c-1"}})
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest("GET", "/inbox/zzz"), testutil.StudentUser()), "id", "zzz")

	rec := testutil.Serve(h.ServeThread, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleReply(t *testing.T) {
	t.Run("empty body not sent", func(t *testing.T) {
		svc := &fakeMessaging{}
		h := newHandler(svc)
		req := testutil.WithChiURLParam(testutil.WithUser(testutil.PostForm("/inbox/c-1/reply", url.Values{"body": {" "}}), testutil.StudentUser()), "id", "c-1")

		rec := testutil.Serve(h.HandleReply, req)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/inbox/c-1" {
			t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
		}
		if len(svc.sent) != 0 {
			t.Error("empty reply reached the service")
		}
	})

	t.Run("htmx appends", func(t *testing.T) {
		svc := &fakeMessaging{}
		h := newHandler(svc)
		req := testutil.PostForm("/inbox/c-1/reply", url.Values{"body": {"see you"}})
		req.Header.Set("HX-Request", "true")
		req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.StudentUser()), "id", "c-1")

		rec := testutil.Serve(h.HandleReply, req)
		if rec.Header().Get("Location") != "" {
			t.Errorf("htmx reply should not redirect, got %q", rec.Header().Get("Location"))
		}
		if len(svc.sent) != 1 || svc.sent[0] != "see you" {
			t.Errorf("sent: %v", svc.sent)
		}
	})

	t.Run("htmx failure keeps the page", func(t *testing.T) {
		h := newHandler(&fakeMessaging{sendErr: apperr.E(apperr.KindForbidden, "not a participant")})
		req := testutil.PostForm("/inbox/c-1/reply", url.Values{"body": {"hello"}})
		req.Header.Set("HX-Request", "true")
		req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.StudentUser()), "id", "c-1")

		rec := testutil.Serve(h.HandleReply, req)
		if rec.Header().Get("HX-Reswap") != "none" {
			t.Errorf("HX-Reswap: got %q, want none", rec.Header().Get("HX-Reswap"))
		}
	})
}
