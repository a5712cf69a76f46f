// internal/app/features/locale/routes.go
package locale

import "github.com/go-chi/chi/v5"

// Routes mounts the language switcher. It is public: visitors switch
// language too.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeSwitch)
	return r
}
