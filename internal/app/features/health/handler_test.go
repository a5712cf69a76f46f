package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/edusphere/internal/app/features/health"
	"go.uber.org/zap"
)

type fakeBackend struct{ err error }

func (f fakeBackend) Ping(context.Context) error { return f.err }

func serve(t *testing.T, h *health.Handler) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, body
}

func TestServe_BackendReachable(t *testing.T) {
	code, body := serve(t, health.NewHandler(nil, fakeBackend{}, zap.NewNop()))
	if code != http.StatusOK || body["status"] != "ok" || body["backend"] != "reachable" || body["database"] != "unused" {
		t.Errorf("got %d %v", code, body)
	}
}

func TestServe_BackendDown(t *testing.T) {
	code, body := serve(t, health.NewHandler(nil, fakeBackend{err: errors.New("connection refused")}, zap.NewNop()))
	if code != http.StatusServiceUnavailable || body["status"] != "error" || body["backend"] != "unreachable" {
		t.Errorf("got %d %v", code, body)
	}
}

type fakeHub int

func (f fakeHub) Rooms() int { return int(f) }

func TestServe_ReportsLiveRooms(t *testing.T) {
	h := health.NewHandler(nil, nil, zap.NewNop())
	h.Hubs = map[string]health.RoomCounter{"note": fakeHub(2), "whiteboard": fakeHub(0)}

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	var body struct {
		Status    string         `json:"status"`
		LiveRooms map[string]int `json:"live_rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Errorf("got %d %q", rec.Code, body.Status)
	}
	if body.LiveRooms["note"] != 2 || body.LiveRooms["whiteboard"] != 0 || len(body.LiveRooms) != 2 {
		t.Errorf("live_rooms: got %v", body.LiveRooms)
	}
}
