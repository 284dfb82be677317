package admissions

import (
	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	parentstore "github.com/littlenest/littlenest/internal/app/store/parents"
	schoolstore "github.com/littlenest/littlenest/internal/app/store/schools"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"github.com/littlenest/littlenest/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin review endpoints: approve provisions a parent
// account from an application, reject closes it, plus listing and stats.
type Handler struct {
	DB      *mongo.Database
	Apps    *applicationstore.Store
	Users   *userstore.Store
	Parents *parentstore.Store
	Schools *schoolstore.Store
	Mail    mailer.Mailer
	Log     *zap.Logger

	SiteName string
	BaseURL  string
}

// NewHandler constructs an admissions Handler.
func NewHandler(db *mongo.Database, mail mailer.Mailer, siteName, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Apps:     applicationstore.New(db),
		Users:    userstore.New(db),
		Parents:  parentstore.New(db),
		Schools:  schoolstore.New(db),
		Mail:     mail,
		Log:      logger,
		SiteName: siteName,
		BaseURL:  baseURL,
	}
}
