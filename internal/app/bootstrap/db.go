// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/app/system/indexes"
	"github.com/dalemusser/edusphere/internal/app/system/ratelimit"
	"github.com/dalemusser/edusphere/internal/app/system/telemetry"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// hubBuffer is the per-subscriber frame queue of the local room hubs.
const hubBuffer = 64

// ConnectDB opens the back end selected by backend_mode: the remote API
// client, or MongoDB plus the in-process room hubs. Tracing is set up first
// so the backend transport exports spans from the first call.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{
		LoginLimiter: ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow),
	}

	stop, err := telemetry.Setup(ctx, "edusphere", appCfg.OTelEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	deps.StopTracing = stop

	if !appCfg.Local() {
		client, err := backend.New(backend.Config{
			BaseURL: appCfg.BackendBaseURL,
			WSURL:   appCfg.BackendWSURL,
			Timeout: appCfg.BackendTimeout,
		}, logger.Named("backend"))
		if err != nil {
			return deps, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			// The API may come up after the web front; /health reports it.
			logger.Warn("backend not reachable at startup", zap.String("url", client.BaseURL()), zap.Error(err))
		}
		deps.Backend = client
		logger.Info("using remote backend", zap.String("url", client.BaseURL()))
		return deps, nil
	}

	connCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return deps, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return deps, fmt.Errorf("mongo ping: %w", err)
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	deps.NoteHub = live.NewHub(hubBuffer, logger.Named("notes-hub"))
	deps.WhiteboardHub = live.NewHub(hubBuffer, logger.Named("whiteboard-hub"))

	logger.Info("using local MongoDB backend", zap.String("database", appCfg.MongoDatabase))
	return deps, nil
}

// EnsureSchema creates the local-mode indexes. Remote mode has no schema.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
