package marketplace

import (
	merchantstore "github.com/littlenest/littlenest/internal/app/store/merchants"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns merchant storefronts: public browsing plus the merchant's own
// catalog of services, products, and coupons.
type Handler struct {
	DB        *mongo.Database
	Merchants *merchantstore.Store
	Log       *zap.Logger
}

// NewHandler constructs a marketplace Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Merchants: merchantstore.New(db),
		Log:       logger,
	}
}
