package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Merchant is the storefront profile for a merchant account, 1:1 with its
// user by UserID.
type Merchant struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`

	BusinessName string `bson:"business_name" json:"businessName"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	City         string `bson:"city,omitempty" json:"city,omitempty"`

	Active bool `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// MerchantService is a bookable service listed on a storefront.
type MerchantService struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MerchantID primitive.ObjectID `bson:"merchant_id" json:"merchantId"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents  int64  `bson:"price_cents" json:"priceCents"`
	DurationMin int    `bson:"duration_min,omitempty" json:"durationMin,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// MerchantProduct is a physical product listed on a storefront.
type MerchantProduct struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MerchantID primitive.ObjectID `bson:"merchant_id" json:"merchantId"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents  int64  `bson:"price_cents" json:"priceCents"`
	Stock       int    `bson:"stock" json:"stock"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// MerchantCoupon is a discount code. Code is generated server-side and
// unique. A coupon is redeemable only inside its validity window.
type MerchantCoupon struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MerchantID primitive.ObjectID `bson:"merchant_id" json:"merchantId"`

	Code        string  `bson:"code" json:"code"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	DiscountPct float64 `bson:"discount_pct" json:"discountPct"` // (0,100]

	ValidFrom time.Time `bson:"valid_from" json:"validFrom"`
	ValidTill time.Time `bson:"valid_till" json:"validTill"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Redeemable reports whether the coupon is inside its validity window.
func (c *MerchantCoupon) Redeemable(now time.Time) bool {
	return !now.Before(c.ValidFrom) && now.Before(c.ValidTill)
}
