package admissions

import (
	"context"
	"errors"
	"net/http"
	"time"

	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	parentstore "github.com/littlenest/littlenest/internal/app/store/parents"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/credentials"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/mailer"
	"github.com/littlenest/littlenest/internal/app/system/normalize"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/txn"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errRaceLost = apperr.Conflictf("already_processed",
	"this application has already been processed by another reviewer")

type reviewRequest struct {
	ReviewNotes string `json:"reviewNotes,omitempty" validate:"max=2000"`
	SendEmail   *bool  `json:"sendEmail,omitempty"`
	SchoolName  string `json:"schoolName,omitempty" validate:"max=200"`
}

// sendEmail defaults to true when the field is omitted.
func (r reviewRequest) sendEmail() bool { return r.SendEmail == nil || *r.SendEmail }

// approvedParent is the parent profile as returned by Approve, with the
// derived child count alongside the embedded children.
type approvedParent struct {
	models.Parent
	ChildrenCount int `json:"childrenCount"`
}

type approveResponse struct {
	Application models.Application `json:"application"`
	User        models.User        `json:"user"`
	Parent      approvedParent     `json:"parent"`
	EmailSent   bool               `json:"emailSent"`
}

// Approve handles POST /api/admin/applications/{id}/approve.
//
// It provisions the parent account in one transaction: create the user with
// a temporary credential, create the parent profile seeded with the applied
// child, and transition the application pending → account_created. The
// status-guarded update is the race arbiter; if a concurrent review already
// processed the application the whole transaction aborts and nothing is
// visible. The welcome email is sent after commit and its failure never
// rolls anything back.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewer, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	reviewerID, err := primitive.ObjectIDFromHex(reviewer.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}

	var req reviewRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("application not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if app.Status != models.ApplicationPending {
		httpjson.Error(w, h.Log, errRaceLost)
		return
	}

	// Identity check before any write: an existing account for this email
	// means the application cannot be provisioned.
	exists, err := h.Users.EmailExists(ctx, app.Parent.Email)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if exists {
		httpjson.Error(w, h.Log, apperr.Conflictf("duplicate_identity",
			"an account with this email already exists"))
		return
	}

	temp, err := credentials.NewTemporary()
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	hash, err := credentials.Hash(temp)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	first, last := normalize.SplitName(app.Parent.Name)
	stamp := applicationstore.ReviewStamp{
		ReviewerID: reviewerID,
		Notes:      sanitize.Text(req.ReviewNotes),
		At:         time.Now().UTC(),
	}

	var (
		user   models.User
		parent models.Parent
	)
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		user, err = h.Users.Create(ctx, models.User{
			FullName:          app.Parent.Name,
			Email:             app.Parent.Email,
			PasswordHash:      hash,
			Role:              models.RoleParent,
			IsFirstLogin:      true,
			TemporaryPassword: temp,
		})
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return apperr.Conflictf("duplicate_identity",
					"an account with this email already exists")
			}
			return err
		}

		parent, err = h.Parents.Create(ctx, models.Parent{
			UserID:    user.ID,
			FirstName: first,
			LastName:  last,
			Phone:     app.Parent.Phone,
			Address:   app.Address,
			Children: []models.Child{{
				Name:     app.Child.Name,
				Age:      app.Child.Age,
				SchoolID: &app.SchoolID,
			}},
		})
		if err != nil {
			if errors.Is(err, parentstore.ErrDuplicateProfile) {
				return apperr.Conflictf("duplicate_identity",
					"a parent profile already exists for this user")
			}
			return err
		}

		ok, err := h.Apps.MarkAccountCreated(ctx, app.ID, stamp, user.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errRaceLost
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			err = apperr.Wrap(apperr.TransactionFailed, "provisioning_failed",
				"account provisioning failed; nothing was applied", err)
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	emailSent := false
	if req.sendEmail() {
		emailSent = h.sendWelcome(ctx, app, user, temp, req.SchoolName)
	}

	// Re-read so the response carries the committed review stamps.
	updated, err := h.Apps.GetByID(ctx, app.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, approveResponse{
		Application: *updated,
		User:        user,
		Parent:      approvedParent{Parent: parent, ChildrenCount: len(parent.Children)},
		EmailSent:   emailSent,
	})
}

// sendWelcome delivers the credential email after a successful commit.
// Failures are logged and reported as emailSent=false, never as an error.
// schoolName, when given, overrides the stored school name in the email copy.
func (h *Handler) sendWelcome(ctx context.Context, app *models.Application, user models.User, temp, schoolName string) bool {
	if schoolName == "" {
		if school, err := h.Schools.GetByID(ctx, app.SchoolID); err == nil {
			schoolName = school.Name
		}
	}

	email := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
		SiteName:     h.SiteName,
		ParentName:   app.Parent.Name,
		SchoolName:   schoolName,
		LoginEmail:   user.Email,
		TempPassword: temp,
		LoginURL:     h.BaseURL + "/login",
	})
	email.To = user.Email

	if _, err := h.Mail.Send(ctx, email); err != nil {
		h.Log.Error("welcome email failed",
			zap.String("application_id", app.ID.Hex()),
			zap.String("to", user.Email),
			zap.Error(err))
		return false
	}
	return true
}

// Reject handles POST /api/admin/applications/{id}/reject: transition
// pending → rejected with the same race semantics as Approve.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewer, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	reviewerID, err := primitive.ObjectIDFromHex(reviewer.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}

	var req reviewRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("application not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	ok, err := h.Apps.MarkRejected(ctx, id, applicationstore.ReviewStamp{
		ReviewerID: reviewerID,
		Notes:      sanitize.Text(req.ReviewNotes),
		At:         time.Now().UTC(),
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, errRaceLost)
		return
	}

	// Courtesy notification; failure is logged and ignored.
	emailSent := false
	if req.sendEmail() {
		email := mailer.BuildRejectionEmail(mailer.RejectionEmailData{
			SiteName:   h.SiteName,
			ParentName: app.Parent.Name,
			Notes:      sanitize.Text(req.ReviewNotes),
		})
		email.To = app.Parent.Email
		emailSent = true
		if _, err := h.Mail.Send(ctx, email); err != nil {
			h.Log.Error("rejection email failed",
				zap.String("application_id", app.ID.Hex()),
				zap.Error(err))
			emailSent = false
		}
	}

	httpjson.OK(w, map[string]any{
		"applicationId": app.ID,
		"status":        models.ApplicationRejected,
		"emailSent":     emailSent,
	})
}

// Show handles GET /api/admin/applications/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("application not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, app)
}
