package profile

import (
	"context"
	"errors"
	"net/http"

	parentstore "github.com/littlenest/littlenest/internal/app/store/parents"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (h *Handler) currentUserID(r *http.Request) (primitive.ObjectID, error) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("session user id is malformed")
	}
	return id, nil
}

// Show handles GET /api/profile.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID, err := h.currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Parents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("parent profile not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, p)
}

type updateRequest struct {
	FirstName string `json:"firstName" validate:"required,max=120"`
	LastName  string `json:"lastName" validate:"required,max=120"`
	Phone     string `json:"phone,omitempty" validate:"max=32"`
	Address   string `json:"address,omitempty" validate:"max=300"`
}

// Update handles PUT /api/profile: edits the parent's own fields, never the
// children.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := h.currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
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

	if err := h.Parents.UpdateProfile(ctx, userID, parentstore.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	}); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	p, err := h.Parents.GetByUserID(ctx, userID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, p)
}

type childRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Age      int    `json:"age" validate:"gte=0,lte=18"`
	SchoolID string `json:"schoolId,omitempty"`
}

// AddChild handles POST /api/profile/children.
func (h *Handler) AddChild(w http.ResponseWriter, r *http.Request) {
	userID, err := h.currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req childRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	child := models.Child{Name: req.Name, Age: req.Age}
	if req.SchoolID != "" {
		schoolID, err := primitive.ObjectIDFromHex(req.SchoolID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validationf("schoolId is not a valid id"))
			return
		}
		child.SchoolID = &schoolID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	child, err = h.Parents.AddChild(ctx, userID, child)
	if err != nil {
		switch {
		case errors.Is(err, parentstore.ErrChildAge):
			httpjson.Error(w, h.Log, apperr.Validationf("child age must be between 0 and 18"))
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, h.Log, apperr.NotFoundf("parent profile not found"))
		default:
			httpjson.Error(w, h.Log, err)
		}
		return
	}

	httpjson.Created(w, child)
}

// UpdateChild handles PUT /api/profile/children/{childId}.
func (h *Handler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	userID, err := h.currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	childID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "childId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("childId is not a valid id"))
		return
	}

	var req childRequest
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

	ok, err := h.Parents.UpdateChild(ctx, userID, childID, req.Name, req.Age)
	if err != nil {
		if errors.Is(err, parentstore.ErrChildAge) {
			httpjson.Error(w, h.Log, apperr.Validationf("child age must be between 0 and 18"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.NotFoundf("child not found"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "updated"})
}

// RemoveChild handles DELETE /api/profile/children/{childId}.
func (h *Handler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	userID, err := h.currentUserID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	childID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "childId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("childId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ok, err := h.Parents.RemoveChild(ctx, userID, childID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !ok {
		httpjson.Error(w, h.Log, apperr.NotFoundf("child not found"))
		return
	}

	httpjson.OK(w, map[string]string{"status": "removed"})
}
