package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"go.uber.org/zap"
)

// NewBackend starts an httptest server with h and returns a client for it.
func NewBackend(t *testing.T, h http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := backend.New(backend.Config{BaseURL: srv.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	return c
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
