package applications

import (
	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	schoolstore "github.com/littlenest/littlenest/internal/app/store/schools"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the public application intake endpoints.
type Handler struct {
	DB      *mongo.Database
	Apps    *applicationstore.Store
	Schools *schoolstore.Store
	Log     *zap.Logger
}

// NewHandler constructs an applications Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Apps:    applicationstore.New(db),
		Schools: schoolstore.New(db),
		Log:     logger,
	}
}
