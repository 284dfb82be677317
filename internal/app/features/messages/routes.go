package messages

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the messaging endpoints. The caller wraps the router
// with RequireSignedIn.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Send)
	r.Get("/{userId}", h.Conversation)
	r.Post("/{userId}/read", h.MarkRead)
}
