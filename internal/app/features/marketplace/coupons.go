package marketplace

import (
	"context"
	"errors"
	"net/http"
	"time"

	merchantstore "github.com/littlenest/littlenest/internal/app/store/merchants"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

type couponRequest struct {
	Description string    `json:"description,omitempty" validate:"max=500"`
	DiscountPct float64   `json:"discountPct" validate:"required,gt=0,lte=100"`
	ValidFrom   time.Time `json:"validFrom" validate:"required"`
	ValidTill   time.Time `json:"validTill" validate:"required"`
}

// CreateCoupon handles POST /api/merchant/coupons. The coupon code is
// generated server-side.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
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

	c, err := h.Merchants.CreateCoupon(ctx, models.MerchantCoupon{
		MerchantID:  m.ID,
		Description: sanitize.Text(req.Description),
		DiscountPct: req.DiscountPct,
		ValidFrom:   req.ValidFrom.UTC(),
		ValidTill:   req.ValidTill.UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, merchantstore.ErrBadDiscount):
			httpjson.Error(w, h.Log, apperr.Validationf("discountPct must be greater than 0 and at most 100"))
		case errors.Is(err, merchantstore.ErrBadWindow):
			httpjson.Error(w, h.Log, apperr.Validationf("validTill must be after validFrom"))
		default:
			httpjson.Error(w, h.Log, err)
		}
		return
	}

	httpjson.Created(w, c)
}

// ListCoupons handles GET /api/merchant/coupons.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.merchantFor(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	rows, err := h.Merchants.ListCoupons(ctx, m.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{"coupons": rows})
}

// CheckCoupon handles GET /api/marketplace/coupons/{code}: anyone signed in
// can check whether a code is currently redeemable.
func (h *Handler) CheckCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Merchants.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("coupon not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	now := time.Now().UTC()
	httpjson.OK(w, map[string]any{
		"coupon":     c,
		"redeemable": c.Redeemable(now),
	})
}
