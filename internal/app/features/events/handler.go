package events

import (
	eventstore "github.com/littlenest/littlenest/internal/app/store/events"
	pollstore "github.com/littlenest/littlenest/internal/app/store/polls"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns event creation, browsing, and poll voting.
type Handler struct {
	DB     *mongo.Database
	Events *eventstore.Store
	Polls  *pollstore.Store
	Users  *userstore.Store
	Log    *zap.Logger
}

// NewHandler constructs an events Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Events: eventstore.New(db),
		Polls:  pollstore.New(db),
		Users:  userstore.New(db),
		Log:    logger,
	}
}
