package events

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the event endpoints. The caller wraps the router with
// RequireSignedIn.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}/poll", h.Vote)
}
