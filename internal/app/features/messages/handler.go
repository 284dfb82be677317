package messages

import (
	messagestore "github.com/littlenest/littlenest/internal/app/store/messages"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns parent↔teacher messaging.
type Handler struct {
	DB       *mongo.Database
	Messages *messagestore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a messages Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Messages: messagestore.New(db),
		Users:    userstore.New(db),
		Log:      logger,
	}
}
