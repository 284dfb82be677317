package login

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the auth endpoints. Login and logout are public;
// change-password is mounted behind RequireSignedIn by the caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

// MountProtectedRoutes mounts endpoints that need a session.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/change-password", h.ChangePassword)
	r.Get("/me", h.Me)
}
