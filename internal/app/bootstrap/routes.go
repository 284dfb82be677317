package bootstrap

import (
	"net/http"

	activitiesfeature "github.com/littlenest/littlenest/internal/app/features/activities"
	admissionsfeature "github.com/littlenest/littlenest/internal/app/features/admissions"
	applicationsfeature "github.com/littlenest/littlenest/internal/app/features/applications"
	eventsfeature "github.com/littlenest/littlenest/internal/app/features/events"
	healthfeature "github.com/littlenest/littlenest/internal/app/features/health"
	loginfeature "github.com/littlenest/littlenest/internal/app/features/login"
	marketplacefeature "github.com/littlenest/littlenest/internal/app/features/marketplace"
	messagesfeature "github.com/littlenest/littlenest/internal/app/features/messages"
	profilefeature "github.com/littlenest/littlenest/internal/app/features/profile"
	schoolsfeature "github.com/littlenest/littlenest/internal/app/features/schools"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/mailer"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the API.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. All feature routers are mounted here;
// role requirements are applied per mount so each feature package stays
// unaware of where it lives in the URL space.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	mail := buildMailer(appCfg, logger)
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Loads the SessionUser into context for every request that carries a
	// valid cookie; the Require* middleware below enforce it where needed.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Route("/health", healthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		// Public: discovery and application intake need no account.
		schoolsHandler := schoolsfeature.NewHandler(db, logger)
		r.Route("/schools", schoolsHandler.MountRoutes)

		applicationsHandler := applicationsfeature.NewHandler(db, logger)
		r.Route("/applications", applicationsHandler.MountRoutes)

		loginHandler := loginfeature.NewHandler(db, sessionMgr, logger)
		r.Route("/auth", func(r chi.Router) {
			loginHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(sessionMgr.RequireSignedIn)
				loginHandler.MountProtectedRoutes(r)
			})
		})

		// Signed-in surface.
		r.Group(func(r chi.Router) {
			r.Use(sessionMgr.RequireSignedIn)

			eventsHandler := eventsfeature.NewHandler(db, logger)
			r.Route("/events", eventsHandler.MountRoutes)

			activitiesHandler := activitiesfeature.NewHandler(db, logger)
			r.Route("/activities", activitiesHandler.MountRoutes)

			messagesHandler := messagesfeature.NewHandler(db, logger)
			r.Route("/messages", messagesHandler.MountRoutes)

			marketplaceHandler := marketplacefeature.NewHandler(db, logger)
			r.Route("/marketplace", marketplaceHandler.MountRoutes)

			r.Group(func(r chi.Router) {
				r.Use(sessionMgr.RequireRole(models.RoleParent))
				profileHandler := profilefeature.NewHandler(db, logger)
				r.Route("/profile", profileHandler.MountRoutes)
			})

			r.Group(func(r chi.Router) {
				r.Use(sessionMgr.RequireRole(models.RoleMerchant))
				r.Route("/merchant", marketplaceHandler.MountMerchantRoutes)
			})
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(sessionMgr.RequireRole(models.RoleAdmin))

			admissionsHandler := admissionsfeature.NewHandler(db, mail, appCfg.SiteName, appCfg.BaseURL, logger)
			r.Route("/admin/applications", admissionsHandler.MountRoutes)

			r.Route("/admin/schools", schoolsHandler.MountAdminRoutes)
		})
	})

	return r, nil
}

// buildMailer picks the email backend from config. The console backend logs
// instead of sending, which is the right default everywhere but production.
func buildMailer(appCfg AppConfig, logger *zap.Logger) mailer.Mailer {
	if appCfg.MailBackend == "sendgrid" {
		return mailer.NewSendGrid(appCfg.SendGridAPIKey, appCfg.MailFromName, appCfg.MailFrom, appCfg.MailSubjectTag)
	}
	return mailer.NewConsole(logger)
}
