// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
//
// The handler dispatches on the current user's role (student, teacher,
// parent, admin).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		pr.Get("/panels/{panel}", h.ServePanel)
	})

	return r
}
