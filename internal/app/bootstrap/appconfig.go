// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Backend modes.
const (
	// ModeRemote binds every service wrapper to the remote EduSphere API.
	ModeRemote = "remote"
	// ModeLocal serves everything from MongoDB and the in-process room hubs.
	ModeLocal = "local"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (EDUSPHERE_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, log level and the environment name; everything the web
// front itself needs lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB (local mode only)
	MongoURI      string
	MongoDatabase string

	// Session and CSRF cookies
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration
	CSRFKey       string

	// Backend selection
	BackendMode    string // "remote" or "local"
	BackendBaseURL string // e.g. https://api.edusphere.example
	BackendWSURL   string // derived from BackendBaseURL when blank
	BackendTimeout time.Duration

	DefaultLocale string // locale served when a request names none

	// Live sessions
	LiveDebounce        time.Duration
	LiveMaxFrameBytes   int64
	LiveFramesPerSecond int
	LiveTicketTTL       time.Duration

	ScreenshotMaxBytes int64

	// Admin seeded at startup in local mode
	SeedAdminEmail    string
	SeedAdminPassword string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// BaseURL is this site's public root, used for OAuth callbacks.
	BaseURL string

	// OTelEndpoint enables OTLP trace export when set.
	OTelEndpoint string

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Local reports whether the app serves from its own MongoDB.
func (c AppConfig) Local() bool { return c.BackendMode == ModeLocal }
