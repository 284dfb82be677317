package activities

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type createRequest struct {
	ChildID string    `json:"childId" validate:"required"`
	Kind    string    `json:"kind" validate:"required,oneof=meal nap play note"`
	Notes   string    `json:"notes,omitempty" validate:"max=2000"`
	Day     time.Time `json:"day" validate:"required"`
}

// Create handles POST /api/activities: a teacher logs one entry for a child.
// Only accounts with a teacher profile may write.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if su.Role != models.RoleTeacher {
		httpjson.Error(w, h.Log, apperr.Conflictf("forbidden_role",
			"only teachers can log activities"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	var req createRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	childID, err := primitive.ObjectIDFromHex(req.ChildID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("childId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teacher, err := h.Teachers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("teacher profile not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	entry := models.Activity{
		ChildID:   childID,
		TeacherID: teacher.ID,
		Kind:      req.Kind,
		Notes:     sanitize.Text(req.Notes),
		Day:       req.Day,
	}
	if teacher.SchoolID != nil {
		entry.SchoolID = *teacher.SchoolID
	}

	entry, err = h.Activities.Create(ctx, entry)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, entry)
}

// ListByChildDay handles GET /api/activities?childId=…&day=2006-01-02.
func (h *Handler) ListByChildDay(w http.ResponseWriter, r *http.Request) {
	childID, err := primitive.ObjectIDFromHex(query.Get(r, "childId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("childId is not a valid id"))
		return
	}
	day, err := time.Parse("2006-01-02", query.Get(r, "day"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("day must be formatted as YYYY-MM-DD"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Activities.ListByChildDay(ctx, childID, day)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{"activities": rows})
}
