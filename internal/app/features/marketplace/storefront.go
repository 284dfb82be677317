package marketplace

import (
	"context"
	"errors"
	"net/http"

	merchantstore "github.com/littlenest/littlenest/internal/app/store/merchants"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("session user id is malformed")
	}
	return id, nil
}

// merchantFor resolves the storefront owned by the signed-in merchant.
func (h *Handler) merchantFor(ctx context.Context, r *http.Request) (*models.Merchant, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return nil, err
	}
	m, err := h.Merchants.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("merchant profile not found")
		}
		return nil, err
	}
	return m, nil
}

// List handles GET /api/marketplace: one page of active storefronts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Merchants.ListActive(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"merchants": rows,
		"meta":      p.MetaFor(total),
	})
}

// Show handles GET /api/marketplace/{id}: one storefront with its catalog.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid merchant id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Merchants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("merchant not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	services, err := h.Merchants.ListServices(ctx, m.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	products, err := h.Merchants.ListProducts(ctx, m.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"merchant": m,
		"services": services,
		"products": products,
	})
}

type profileRequest struct {
	BusinessName string `json:"businessName" validate:"required,max=200"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	Phone        string `json:"phone,omitempty" validate:"max=32"`
	City         string `json:"city,omitempty" validate:"max=120"`
}

// CreateProfile handles POST /api/merchant/profile.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req profileRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Merchants.Create(ctx, models.Merchant{
		UserID:       userID,
		BusinessName: req.BusinessName,
		Description:  sanitize.Text(req.Description),
		Phone:        req.Phone,
		City:         req.City,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, merchantstore.ErrDuplicateProfile) {
			httpjson.Error(w, h.Log, apperr.Conflictf("duplicate_profile",
				"a merchant profile already exists for this account"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, m)
}

// ShowProfile handles GET /api/merchant/profile.
func (h *Handler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, m)
}

type serviceRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	PriceCents  int64  `json:"priceCents" validate:"gte=0"`
	DurationMin int    `json:"durationMin,omitempty" validate:"gte=0"`
}

// CreateService handles POST /api/merchant/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	svc, err := h.Merchants.CreateService(ctx, models.MerchantService{
		MerchantID:  m.ID,
		Title:       req.Title,
		Description: sanitize.Text(req.Description),
		PriceCents:  req.PriceCents,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, svc)
}

// DeleteService handles DELETE /api/merchant/services/{serviceId}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "serviceId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("serviceId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ok, err := h.Merchants.DeleteService(ctx, m.ID, serviceID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.NotFoundf("service not found"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "deleted"})
}

type productRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	PriceCents  int64  `json:"priceCents" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// CreateProduct handles POST /api/merchant/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	p, err := h.Merchants.CreateProduct(ctx, models.MerchantProduct{
		MerchantID:  m.ID,
		Title:       req.Title,
		Description: sanitize.Text(req.Description),
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, p)
}

// DeleteProduct handles DELETE /api/merchant/products/{productId}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("productId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ok, err := h.Merchants.DeleteProduct(ctx, m.ID, productID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.NotFoundf("product not found"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "deleted"})
}
