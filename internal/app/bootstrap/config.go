// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is the shortest session key accepted outside dev.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for EduSphere.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, backend_mode, etc.
//   - Environment variables: EDUSPHERE_MONGO_URI, EDUSPHERE_BACKEND_MODE, etc.
//   - Command-line flags: --mongo_uri, --backend_mode, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (local mode)"},
	{Name: "mongo_database", Default: "edusphere", Desc: "MongoDB database name (local mode)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "edusphere-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "CSRF token key (32 bytes)"},

	// Backend
	{Name: "backend_mode", Default: ModeRemote, Desc: "Where data comes from: 'remote' (EduSphere API) or 'local' (MongoDB)"},
	{Name: "backend_base_url", Default: "http://localhost:8081", Desc: "Remote API base URL"},
	{Name: "backend_ws_url", Default: "", Desc: "Remote WebSocket base URL (derived from backend_base_url when blank)"},
	{Name: "backend_timeout", Default: "10s", Desc: "Per-request timeout for backend calls"},

	{Name: "default_locale", Default: "en", Desc: "Locale used when the browser names none: en, fr or ar"},

	// Live sessions
	{Name: "live_debounce", Default: "750ms", Desc: "Quiet period before note edits are forwarded"},
	{Name: "live_max_frame_bytes", Default: 65536, Desc: "Largest live frame accepted from a browser"},
	{Name: "live_frames_per_second", Default: 30, Desc: "Live frames per second allowed per connection"},
	{Name: "live_ticket_ttl", Default: "1m", Desc: "Lifetime of the ticket a page embeds to open its socket"},

	{Name: "screenshot_max_bytes", Default: 2097152, Desc: "Largest whiteboard screenshot accepted"},

	// Local-mode admin seed
	{Name: "seed_admin_email", Default: "", Desc: "Email of an admin account created at startup (local mode)"},
	{Name: "seed_admin_password", Default: "", Desc: "Password for the seeded admin"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this site"},
	{Name: "otel_endpoint", Default: "", Desc: "OTLP HTTP endpoint for traces (blank disables tracing)"},

	// Login throttling
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP and per account in each window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login throttling window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, EDUSPHERE_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EDUSPHERE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		BackendMode:    strings.ToLower(strings.TrimSpace(appValues.String("backend_mode"))),
		BackendBaseURL: appValues.String("backend_base_url"),
		BackendWSURL:   appValues.String("backend_ws_url"),
		BackendTimeout: appValues.Duration("backend_timeout", 10*time.Second),

		DefaultLocale: appValues.String("default_locale"),

		LiveDebounce:        appValues.Duration("live_debounce", live.DefaultLimits.Debounce),
		LiveMaxFrameBytes:   int64(appValues.Int("live_max_frame_bytes")),
		LiveFramesPerSecond: appValues.Int("live_frames_per_second"),
		LiveTicketTTL:       appValues.Duration("live_ticket_ttl", time.Minute),

		ScreenshotMaxBytes: int64(appValues.Int("screenshot_max_bytes")),

		SeedAdminEmail:    strings.TrimSpace(appValues.String("seed_admin_email")),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL:      appValues.String("base_url"),
		OTelEndpoint: appValues.String("otel_endpoint"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Problems are caught here, before anything connects: an unknown backend
// mode, malformed URLs, a weak session key outside dev, an unsupported
// default locale, or a half-configured admin seed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.BackendMode {
	case ModeLocal:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required in local mode")
		}
	case ModeRemote:
		if err := checkURL("backend_base_url", appCfg.BackendBaseURL, "http", "https"); err != nil {
			return err
		}
		if appCfg.BackendWSURL != "" {
			if err := checkURL("backend_ws_url", appCfg.BackendWSURL, "ws", "wss"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("backend_mode must be %q or %q, got %q", ModeRemote, ModeLocal, appCfg.BackendMode)
	}

	if err := checkURL("base_url", appCfg.BaseURL, "http", "https"); err != nil {
		return err
	}

	if coreCfg != nil && coreCfg.Env != "dev" {
		if len(appCfg.SessionKey) < minSessionKeyLen {
			return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
		}
		if strings.HasPrefix(appCfg.SessionKey, "dev-only") || strings.HasPrefix(appCfg.CSRFKey, "dev-only") {
			return fmt.Errorf("session_key and csrf_key must be changed outside dev")
		}
	}
	if len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes")
	}

	if _, ok := i18n.Lookup(appCfg.DefaultLocale); !ok {
		return fmt.Errorf("default_locale %q is not supported", appCfg.DefaultLocale)
	}

	if (appCfg.SeedAdminEmail == "") != (appCfg.SeedAdminPassword == "") {
		return fmt.Errorf("seed_admin_email and seed_admin_password must be set together")
	}

	if appCfg.ScreenshotMaxBytes <= 0 {
		return fmt.Errorf("screenshot_max_bytes must be positive")
	}
	if appCfg.LoginRateLimit <= 0 {
		return fmt.Errorf("login_rate_limit must be positive")
	}

	return nil
}

func checkURL(key, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use %s, got %q", key, strings.Join(schemes, " or "), raw)
}
