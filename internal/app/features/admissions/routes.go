package admissions

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the review endpoints. The caller wraps the router with
// RequireRole("admin").
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
}
