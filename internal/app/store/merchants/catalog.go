package merchantstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrBadDiscount is returned when a coupon discount is outside (0, 100].
	ErrBadDiscount = errors.New("discount must be greater than 0 and at most 100")

	// ErrBadWindow is returned when a coupon's validity window is inverted.
	ErrBadWindow = errors.New("valid_till must be after valid_from")
)

// CreateService adds a service to a storefront.
func (s *Store) CreateService(ctx context.Context, svc models.MerchantService) (models.MerchantService, error) {
	svc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := s.services.InsertOne(ctx, svc); err != nil {
		return models.MerchantService{}, err
	}
	return svc, nil
}

// ListServices returns all services for a storefront.
func (s *Store) ListServices(ctx context.Context, merchantID primitive.ObjectID) ([]models.MerchantService, error) {
	return listByMerchant[models.MerchantService](ctx, s.services, merchantID)
}

// DeleteService removes one service owned by the merchant.
func (s *Store) DeleteService(ctx context.Context, merchantID, serviceID primitive.ObjectID) (bool, error) {
	res, err := s.services.DeleteOne(ctx, bson.M{"_id": serviceID, "merchant_id": merchantID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// CreateProduct adds a product to a storefront.
func (s *Store) CreateProduct(ctx context.Context, p models.MerchantProduct) (models.MerchantProduct, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return models.MerchantProduct{}, err
	}
	return p, nil
}

// ListProducts returns all products for a storefront.
func (s *Store) ListProducts(ctx context.Context, merchantID primitive.ObjectID) ([]models.MerchantProduct, error) {
	return listByMerchant[models.MerchantProduct](ctx, s.products, merchantID)
}

// DeleteProduct removes one product owned by the merchant.
func (s *Store) DeleteProduct(ctx context.Context, merchantID, productID primitive.ObjectID) (bool, error) {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": productID, "merchant_id": merchantID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// CreateCoupon adds a coupon with a server-generated unique code.
func (s *Store) CreateCoupon(ctx context.Context, c models.MerchantCoupon) (models.MerchantCoupon, error) {
	if c.DiscountPct <= 0 || c.DiscountPct > 100 {
		return models.MerchantCoupon{}, ErrBadDiscount
	}
	if !c.ValidTill.After(c.ValidFrom) {
		return models.MerchantCoupon{}, ErrBadWindow
	}

	c.ID = primitive.NewObjectID()
	c.Code = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	// Code collisions are vanishingly rare; surface rather than retry.
	if _, err := s.coupons.InsertOne(ctx, c); err != nil {
		return models.MerchantCoupon{}, err
	}
	return c, nil
}

// GetCouponByCode loads a coupon by its public code.
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.MerchantCoupon, error) {
	var c models.MerchantCoupon
	if err := s.coupons.FindOne(ctx, bson.M{"code": code}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCoupons returns all coupons for a storefront.
func (s *Store) ListCoupons(ctx context.Context, merchantID primitive.ObjectID) ([]models.MerchantCoupon, error) {
	return listByMerchant[models.MerchantCoupon](ctx, s.coupons, merchantID)
}

func listByMerchant[T any](ctx context.Context, c *mongo.Collection, merchantID primitive.ObjectID) ([]T, error) {
	cur, err := c.Find(ctx, bson.M{"merchant_id": merchantID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []T
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
