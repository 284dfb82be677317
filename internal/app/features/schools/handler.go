package schools

import (
	schoolstore "github.com/littlenest/littlenest/internal/app/store/schools"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns school discovery and admin management.
type Handler struct {
	DB      *mongo.Database
	Schools *schoolstore.Store
	Log     *zap.Logger
}

// NewHandler constructs a schools Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Schools: schoolstore.New(db),
		Log:     logger,
	}
}
