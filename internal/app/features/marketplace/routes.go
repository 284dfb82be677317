package marketplace

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public browsing endpoints. The caller wraps the
// router with RequireSignedIn.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Get("/coupons/{code}", h.CheckCoupon)
}

// MountMerchantRoutes mounts the storefront management endpoints. The caller
// wraps the router with RequireRole("merchant").
func (h *Handler) MountMerchantRoutes(r chi.Router) {
	r.Post("/profile", h.CreateProfile)
	r.Get("/profile", h.ShowProfile)
	r.Post("/services", h.CreateService)
	r.Delete("/services/{serviceId}", h.DeleteService)
	r.Post("/products", h.CreateProduct)
	r.Delete("/products/{productId}", h.DeleteProduct)
	r.Post("/coupons", h.CreateCoupon)
	r.Get("/coupons", h.ListCoupons)
}
