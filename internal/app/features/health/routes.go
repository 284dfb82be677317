package health

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the health endpoint on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Serve)
}
