// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/app/system/ratelimit"
	"github.com/dalemusser/edusphere/internal/app/system/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies the handlers are built on.
// Exactly one of Backend (remote mode) or MongoClient (local mode) is set.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Backend *backend.Client

	// Room hubs fan live frames out in local mode.
	NoteHub       *live.Hub
	WhiteboardHub *live.Hub

	LoginLimiter *ratelimit.LoginLimiter

	// StopTracing flushes pending spans. Never nil after ConnectDB.
	StopTracing telemetry.Shutdown
}
