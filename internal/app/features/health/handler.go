package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by the remote backend client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RoomCounter is satisfied by the live hubs.
type RoomCounter interface {
	Rooms() int
}

// Handler holds dependencies needed for health checks. Either dependency
// may be nil when the current backend mode does not use it. Hubs maps a
// live channel kind to its in-process hub (local mode only).
type Handler struct {
	Client  *mongo.Client
	Backend Pinger
	Hubs    map[string]RoomCounter
	Log     *zap.Logger
}

func NewHandler(client *mongo.Client, backend Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	// LiveRooms counts occupied rooms per live channel kind.
	LiveRooms map[string]int `json:"live_rooms,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"reachable" }
//
// Local mode adds "live_rooms" with the occupied room count per hub.
//
// When any dependency fails: 503 with status "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "unused", Backend: "unused"}

	if h.Client != nil {
		resp.Database = "connected"
		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Status, resp.Database, resp.Error = "error", "disconnected", err.Error()
		}
	}
	if h.Backend != nil {
		resp.Backend = "reachable"
		if err := h.Backend.Ping(ctx); err != nil {
			h.Log.Error("health-check: backend ping failed", zap.Error(err))
			resp.Status, resp.Backend, resp.Error = "error", "unreachable", err.Error()
		}
	}

	if len(h.Hubs) > 0 {
		resp.LiveRooms = make(map[string]int, len(h.Hubs))
		for kind, hub := range h.Hubs {
			resp.LiveRooms[kind] = hub.Rooms()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
