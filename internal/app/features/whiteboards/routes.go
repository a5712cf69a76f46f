// internal/app/features/whiteboards/routes.go
package whiteboards

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleStudent, models.RoleTeacher, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}", h.ServeBoard)
		pr.Post("/{id}", h.HandleRename)

		pr.Get("/{id}/screenshot", h.ServeScreenshot)
		pr.Post("/{id}/screenshot", h.HandleScreenshot)
	})

	return r
}
