// internal/app/features/community/routes.go
package community

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /community. The leaderboard is open to every
// signed-in role; groups and the forum are for the roles that take part.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/leaderboard", h.ServeLeaderboard)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleStudent, models.RoleTeacher, models.RoleAdmin))

		// GROUPS
		pr.Get("/groups", h.ServeGroups)
		pr.Get("/groups/new", h.ServeNewGroup)
		pr.Post("/groups", h.HandleCreateGroup)
		pr.Post("/groups/{id}/join", h.HandleJoin)
		pr.Post("/groups/{id}/leave", h.HandleLeave)

		// FORUM
		pr.Get("/forum", h.ServeForum)
		pr.Get("/forum/new", h.ServeNewPost)
		pr.Post("/forum", h.HandleCreatePost)
	})

	return r
}
