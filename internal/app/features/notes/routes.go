// internal/app/features/notes/routes.go
package notes

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleStudent, models.RoleTeacher, models.RoleAdmin))

		// LIST + CREATE
		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		// EDITOR
		pr.Get("/{id}", h.ServeEditor)
		pr.Post("/{id}", h.HandleUpdate)
		pr.Post("/{id}/delete", h.HandleDelete)

		// AI SUGGESTIONS (HTMX)
		pr.Get("/{id}/suggestions", h.ServeSuggestions)
		pr.Post("/{id}/suggestions/{sid}/apply", h.HandleApplySuggestion)

		// SHARING
		pr.Post("/{id}/share", h.HandleShare)
		pr.Post("/{id}/collaborators/{uid}/remove", h.HandleRemoveCollaborator)
	})

	return r
}
