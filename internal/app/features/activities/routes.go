package activities

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the activity log endpoints. The caller wraps the router
// with RequireSignedIn; Create additionally checks the teacher role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.ListByChildDay)
}
