// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/edusphere/internal/app/features/authgoogle"
	communityfeature "github.com/dalemusser/edusphere/internal/app/features/community"
	coursesfeature "github.com/dalemusser/edusphere/internal/app/features/courses"
	dashboardfeature "github.com/dalemusser/edusphere/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/edusphere/internal/app/features/errors"
	flashcardsfeature "github.com/dalemusser/edusphere/internal/app/features/flashcards"
	healthfeature "github.com/dalemusser/edusphere/internal/app/features/health"
	homefeature "github.com/dalemusser/edusphere/internal/app/features/home"
	inboxfeature "github.com/dalemusser/edusphere/internal/app/features/inbox"
	localefeature "github.com/dalemusser/edusphere/internal/app/features/locale"
	loginfeature "github.com/dalemusser/edusphere/internal/app/features/login"
	logoutfeature "github.com/dalemusser/edusphere/internal/app/features/logout"
	notesfeature "github.com/dalemusser/edusphere/internal/app/features/notes"
	whiteboardsfeature "github.com/dalemusser/edusphere/internal/app/features/whiteboards"
	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// flashName is the cookie that carries one-time notices across redirects.
const flashName = "edusphere-flash"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the back-end connection, schema
// setup and Startup have completed. It boots the template engine, binds
// the service wrappers for the configured backend mode, installs the
// request-scoped middleware (request id, logging, CSRF, session user,
// locale, flash) and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	svc, err := buildServices(deps, logger)
	if err != nil {
		logger.Error("service wiring failed", zap.Error(err))
		return nil, err
	}

	flasher := flash.New(sessionMgr.Store(), flashName)
	errLog := errorsfeature.NewErrorLogger(logger, flasher)
	errorsHandler := errorsfeature.NewHandler()

	// Socket tickets are signed with the session key so a restart with the
	// same config keeps open pages valid.
	tickets := live.NewTickets([]byte(appCfg.SessionKey), appCfg.LiveTicketTTL)
	limits := live.Limits{
		Debounce:        appCfg.LiveDebounce,
		MaxFrameBytes:   appCfg.LiveMaxFrameBytes,
		FramesPerSecond: appCfg.LiveFramesPerSecond,
	}

	localeHandler := localefeature.NewHandler(svc.Accounts, sessionMgr, errLog, logger)

	// Page middleware: CSRF, then the session user, which the locale
	// middleware reads for the stored preference, then flash notices.
	pageStack := chi.Chain(
		csrfProtect([]byte(appCfg.CSRFKey), secure, logger),
		sessionMgr.LoadSessionUser,
		i18n.Middleware(i18n.Default(), auth.UserLocale, localeHandler.Remember),
		flasher.Middleware,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	// Set before any Mount so feature routers inherit it.
	r.NotFound(pageStack.HandlerFunc(errorsHandler.NotFound).ServeHTTP)

	// Health and static assets sit outside the session stack.
	var pinger healthfeature.Pinger
	if deps.Backend != nil {
		pinger = deps.Backend
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, pinger, logger)
	if deps.NoteHub != nil && deps.WhiteboardHub != nil {
		healthHandler.Hubs = map[string]healthfeature.RoomCounter{
			live.KindNote:       deps.NoteHub,
			live.KindWhiteboard: deps.WhiteboardHub,
		}
	}
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		r.Use(pageStack...)

		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		r.Mount("/locale", localefeature.Routes(localeHandler))

		// Authentication
		googleHandler := authgooglefeature.NewHandler(svc.Accounts, sessionMgr, errLog,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

		loginHandler := loginfeature.NewHandler(svc.Accounts, sessionMgr, deps.LoginLimiter, errLog, googleHandler.IsConfigured(), logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Role-based dashboards
		dashboardHandler := dashboardfeature.NewHandler(svc.Dashboard, errLog, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		// Community, messaging and study tools
		communityHandler := communityfeature.NewHandler(svc.Community, errLog, logger)
		r.Mount("/community", communityfeature.Routes(communityHandler, sessionMgr))

		inboxHandler := inboxfeature.NewHandler(svc.Messaging, errLog, logger)
		r.Mount("/inbox", inboxfeature.Routes(inboxHandler, sessionMgr))

		notesHandler := notesfeature.NewHandler(svc.Notes, tickets, errLog, logger)
		r.Mount("/notes", notesfeature.Routes(notesHandler, sessionMgr))

		boardsHandler := whiteboardsfeature.NewHandler(svc.Whiteboard, tickets, errLog, appCfg.ScreenshotMaxBytes, logger)
		r.Mount("/whiteboards", whiteboardsfeature.Routes(boardsHandler, sessionMgr))

		flashcardsHandler := flashcardsfeature.NewHandler(svc.Flashcards, errLog, logger)
		r.Mount("/flashcards", flashcardsfeature.Routes(flashcardsHandler, sessionMgr))

		// Professor course management
		coursesHandler := coursesfeature.NewHandler(svc.Professor, errLog, logger)
		r.Mount("/courses", coursesfeature.Routes(coursesHandler, sessionMgr))

		// Live sockets; the ticket in the query authorizes the room.
		noteLive := live.NewHandler(live.KindNote, svc.Notes.Connect, tickets, limits, logger.Named("live"))
		boardLive := live.NewHandler(live.KindWhiteboard, svc.Whiteboard.Connect, tickets, limits, logger.Named("live"))
		r.Handle("/live/notes/{id}", noteLive)
		r.Handle("/live/whiteboards/{id}", boardLive)
	})

	return telemetry.Handler(r, "edusphere"), nil
}
