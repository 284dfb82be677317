package profile

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the profile endpoints. The caller wraps the router with
// RequireRole("parent").
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
	r.Put("/", h.Update)
	r.Post("/children", h.AddChild)
	r.Put("/children/{childId}", h.UpdateChild)
	r.Delete("/children/{childId}", h.RemoveChild)
}
