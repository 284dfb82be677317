package schools

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public discovery endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
}

// MountAdminRoutes mounts the management endpoints. The caller wraps the
// router with RequireRole("admin").
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
}
