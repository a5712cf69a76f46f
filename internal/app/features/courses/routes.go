// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts course management for teachers and admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleTeacher, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeCourse)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}", h.HandleUpdate)

		// MATERIALS
		pr.Get("/{id}/materials", h.ServeMaterials)
		pr.Get("/{id}/materials/new", h.ServeNewMaterial)
		pr.Post("/{id}/materials", h.HandleCreateMaterial)
		pr.Post("/{id}/materials/{mid}/delete", h.HandleDeleteMaterial)

		// STUDENTS
		pr.Get("/{id}/students", h.ServeStudents)
	})

	return r
}
