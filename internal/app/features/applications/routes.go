package applications

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public application endpoints. None of them require
// a session: applicants do not have accounts yet, so the status and edit
// endpoints authenticate with the applicant email instead.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Submit)
	r.Get("/{id}/status", h.Status)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Cancel)
}
