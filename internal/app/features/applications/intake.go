package applications

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type submitRequest struct {
	SchoolID         string `json:"schoolId" validate:"required"`
	ChildName        string `json:"childName" validate:"required,max=120"`
	ChildAge         int    `json:"childAge" validate:"gte=0,lte=18"`
	ParentName       string `json:"parentName" validate:"required,max=120"`
	Phone            string `json:"phone" validate:"required,max=32"`
	Email            string `json:"email" validate:"required,email"`
	EmergencyContact string `json:"emergencyContact,omitempty" validate:"max=200"`
	Address          string `json:"address,omitempty" validate:"max=300"`
	Notes            string `json:"notes,omitempty" validate:"max=2000"`
}

// Submit handles POST /api/applications: a prospective parent applies to a
// school. Rejected when the school is unknown/inactive or an open application
// already exists for the same email and school.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("schoolId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Schools.GetActiveByID(ctx, schoolID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("school not found or not accepting applications"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	// Friendly pre-check; the partial unique index catches the race.
	open, err := h.Apps.HasOpenForEmailSchool(ctx, req.Email, schoolID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if open {
		httpjson.Error(w, h.Log, apperr.Conflictf("duplicate_application",
			"an application for this email and school is already in progress"))
		return
	}

	app, err := h.Apps.Create(ctx, models.Application{
		SchoolID:         schoolID,
		Child:            models.ApplicantChild{Name: req.ChildName, Age: req.ChildAge},
		Parent:           models.ApplicantParent{Name: req.ParentName, Phone: req.Phone, Email: req.Email},
		EmergencyContact: sanitize.Text(req.EmergencyContact),
		Address:          sanitize.Text(req.Address),
		Notes:            sanitize.Text(req.Notes),
		Provenance:       provenance(r),
	})
	if err != nil {
		if errors.Is(err, applicationstore.ErrDuplicateOpen) {
			httpjson.Error(w, h.Log, apperr.Conflictf("duplicate_application",
				"an application for this email and school is already in progress"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, app)
}

// Status handles GET /api/applications/{id}/status?email=…. The email must
// match the one on file; a mismatch is reported as not found so the endpoint
// cannot be used to probe for application IDs.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}
	email := query.Get(r, "email")
	if email == "" {
		httpjson.Error(w, h.Log, apperr.Validationf("email query parameter is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	app, err := h.Apps.GetByIDAndEmail(ctx, id, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("application not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"id":          app.ID,
		"status":      app.Status,
		"submittedAt": app.SubmittedAt,
	})
}

type updateRequest struct {
	Email            string `json:"email" validate:"required,email"`
	ChildName        string `json:"childName" validate:"required,max=120"`
	ChildAge         int    `json:"childAge" validate:"gte=0,lte=18"`
	ParentName       string `json:"parentName" validate:"required,max=120"`
	Phone            string `json:"phone" validate:"required,max=32"`
	EmergencyContact string `json:"emergencyContact,omitempty" validate:"max=200"`
	Address          string `json:"address,omitempty" validate:"max=300"`
	Notes            string `json:"notes,omitempty" validate:"max=2000"`
}

// Update handles PATCH /api/applications/{id}: the applicant revises a
// pending application. Once reviewed, edits are refused.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}

	var req updateRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ok, err := h.Apps.UpdatePending(ctx, id, req.Email, applicationstore.PendingUpdate{
		ChildName:        req.ChildName,
		ChildAge:         req.ChildAge,
		ParentName:       req.ParentName,
		Phone:            req.Phone,
		EmergencyContact: sanitize.Text(req.EmergencyContact),
		Address:          sanitize.Text(req.Address),
		Notes:            sanitize.Text(req.Notes),
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.Conflictf("already_processed",
			"this application has already been reviewed and can no longer be edited"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "updated"})
}

// Cancel handles DELETE /api/applications/{id}?email=…: the applicant
// withdraws a pending application.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid application id"))
		return
	}
	email := query.Get(r, "email")
	if email == "" {
		httpjson.Error(w, h.Log, apperr.Validationf("email query parameter is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ok, err := h.Apps.CancelPending(ctx, id, email)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.Conflictf("already_processed",
			"this application has already been reviewed and can no longer be withdrawn"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "cancelled"})
}

// provenance records where a public submission came from.
func provenance(r *http.Request) models.Provenance {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop is the client when behind a proxy.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}

	return models.Provenance{
		SourceIP:  ip,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}
