// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/resources"
	"github.com/dalemusser/edusphere/internal/app/services/accounts"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// seedAdminName is the display name given to the seeded admin account.
const seedAdminName = "Administrator"

// Startup runs one-time application initialization after the back end is
// connected and before the HTTP handler is built: shared templates, the
// message catalogs, timeout tiers, and the local-mode admin seed.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Fails fast on a broken catalog instead of on the first request.
	bundle := i18n.Default()
	if err := i18n.SetFallback(appCfg.DefaultLocale); err != nil {
		return err
	}
	logger.Info("message catalogs loaded",
		zap.Int("keys", len(bundle.Keys(i18n.BaseLocale.Code))),
		zap.String("default_locale", i18n.Fallback().Code))

	timeouts.Configure(timeouts.FromBackend(appCfg.BackendTimeout))

	if deps.MongoDatabase != nil && appCfg.SeedAdminEmail != "" {
		if err := seedAdmin(ctx, deps.MongoDatabase, appCfg.SeedAdminEmail, appCfg.SeedAdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// seedAdmin creates the configured admin unless an account already uses
// the email. An existing account is left untouched.
func seedAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	hash, err := accounts.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed admin password: %w", err)
	}
	created, err := userstore.New(db).EnsureAdmin(ctx, seedAdminName, email, hash)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("seeded admin account", zap.String("email", email))
	}
	return nil
}
