// internal/app/features/inbox/routes.go
package inbox

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /inbox. Every signed-in role has an inbox.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeInbox)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleStart)
		pr.Get("/{id}", h.ServeThread)
		pr.Post("/{id}/reply", h.HandleReply)
	})

	return r
}
