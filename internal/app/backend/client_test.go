package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "ftp://x", "not a url", "/relative"} {
		if _, err := New(Config{BaseURL: raw}, zap.NewNop()); err == nil {
			t.Errorf("New(%q): expected error", raw)
		}
	}
	c, err := New(Config{BaseURL: "https://api.example.com/"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.wsBase.String(); got != "wss://api.example.com" {
		t.Errorf("derived ws base: got %q", got)
	}
}

func TestGet_SendsBearerTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("subject")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Calculus club"}`))
	}))

	var out struct{ Name string }
	err := c.Get(context.Background(), "tok-123", "/api/community/groups", url.Values{"subject": {"math"}}, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
	if gotQuery != "math" || gotPath != "/api/community/groups" {
		t.Errorf("request: path %q query %q", gotPath, gotQuery)
	}
	if out.Name != "Calculus club" {
		t.Errorf("decoded: got %+v", out)
	}
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization %q", h)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	if err := c.Get(context.Background(), "", "/api/health", nil, nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestPost_EncodesBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["title"]})
	}))
	var out map[string]string
	if err := c.Post(context.Background(), "t", "/api/notes", map[string]string{"title": "Photosynthesis"}, &out); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out["echo"] != "Photosynthesis" {
		t.Errorf("echo: got %q", out["echo"])
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   apperr.Kind
		msg    string
	}{
		{http.StatusBadRequest, `{"error":{"code":"invalid","message":"name is required"}}`, apperr.KindInvalidInput, "name is required"},
		{http.StatusUnauthorized, `{"message":"token expired"}`, apperr.KindUnauthorized, "token expired"},
		{http.StatusForbidden, ``, apperr.KindForbidden, "Forbidden"},
		{http.StatusNotFound, `not json`, apperr.KindNotFound, "Not Found"},
		{http.StatusConflict, `{"message":"already a member"}`, apperr.KindConflict, "already a member"},
		{http.StatusServiceUnavailable, ``, apperr.KindUnavailable, "Service Unavailable"},
		{http.StatusInternalServerError, ``, apperr.KindUnknown, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			err := c.Get(context.Background(), "t", "/api/x", nil, nil)
			if got := apperr.KindOf(err); got != tt.kind {
				t.Errorf("kind: got %q, want %q", got, tt.kind)
			}
			if err == nil || err.Error() != tt.msg {
				t.Errorf("message: got %v, want %q", err, tt.msg)
			}
			var se *StatusError
			if !errors.As(err, &se) || se.Code != tt.status {
				t.Errorf("status error: got %v", se)
			}
		})
	}
}

func TestTransportError_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Get(context.Background(), "", "/api/health", nil, nil)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("kind: got %q, want unavailable", apperr.KindOf(err))
	}
}

func TestGetBytes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	data, ct, err := c.GetBytes(context.Background(), "t", "/api/whiteboard/sessions/s1/screenshot")
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if ct != "image/png" || len(data) != 4 {
		t.Errorf("got %d bytes of %q", len(data), ct)
	}
}

func TestDial_CarriesToken(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "no", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mt, msg, err := conn.ReadMessage()
		if err == nil {
			_ = conn.WriteMessage(mt, msg)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(c.wsBase.String(), "ws://") {
		t.Fatalf("ws base: %s", c.wsBase)
	}

	if _, err := c.Dial(context.Background(), "bad", "/ws/notes/n1"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("dial with bad token: got %v", err)
	}

	conn, err := c.Dial(context.Background(), "tok", "/ws/notes/n1")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil || string(msg) != "hi" {
		t.Errorf("echo: got %q, %v", msg, err)
	}
}
