// internal/app/features/flashcards/routes.go
package flashcards

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleStudent))

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}", h.HandleUpdate)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
