package profile

import (
	parentstore "github.com/littlenest/littlenest/internal/app/store/parents"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the parent profile and its embedded children.
type Handler struct {
	DB      *mongo.Database
	Parents *parentstore.Store
	Log     *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Parents: parentstore.New(db),
		Log:     logger,
	}
}
