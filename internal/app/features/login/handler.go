package login

import (
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns sign-in, sign-out, and the password-change endpoints.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Sessions: sm,
		Log:      logger,
	}
}
