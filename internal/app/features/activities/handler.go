package activities

import (
	activitystore "github.com/littlenest/littlenest/internal/app/store/activities"
	teacherstore "github.com/littlenest/littlenest/internal/app/store/teachers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the daily activity log: teachers write entries, parents read
// them by child and day.
type Handler struct {
	DB         *mongo.Database
	Activities *activitystore.Store
	Teachers   *teacherstore.Store
	Log        *zap.Logger
}

// NewHandler constructs an activities Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Activities: activitystore.New(db),
		Teachers:   teacherstore.New(db),
		Log:        logger,
	}
}
