package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/credentials"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// errBadCredentials is the single answer for unknown email, wrong password,
// and disabled accounts, so the endpoint does not leak which one it was.
var errBadCredentials = apperr.New(apperr.Validation, "invalid_credentials",
	"email or password is incorrect")

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ID           primitive.ObjectID `json:"id"`
	FullName     string             `json:"fullName"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	IsFirstLogin bool               `json:"isFirstLogin"`
}

// Login handles POST /api/auth/login. A provisioned account signing in with
// its temporary credential gets isFirstLogin=true and must change the
// password before using the rest of the API.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, errBadCredentials)
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if user.Status != models.StatusActive || !credentials.Verify(user.PasswordHash, req.Password) {
		httpjson.Error(w, h.Log, errBadCredentials)
		return
	}

	if err := h.Sessions.SignIn(w, r, auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, loginResponse{
		ID:           user.ID,
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         user.Role,
		IsFirstLogin: user.IsFirstLogin,
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]string{"status": "signed_out"})
}

// Me handles GET /api/auth/me for the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("user not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// ChangePassword handles POST /api/auth/change-password.
//
// For a first login it completes provisioning: the new password must differ
// from the issued temporary credential, and the guarded update clears the
// first-login state atomically with the hash swap. For an established
// account it is a plain password change.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	var req changePasswordRequest
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

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !credentials.Verify(user.PasswordHash, req.CurrentPassword) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Validation, "invalid_credentials",
			"current password is incorrect"))
		return
	}

	if user.IsFirstLogin && req.NewPassword == user.TemporaryPassword {
		httpjson.Error(w, h.Log, apperr.Conflictf("credential_reuse",
			"the new password must differ from the temporary one"))
		return
	}

	hash, err := credentials.Hash(req.NewPassword)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if user.IsFirstLogin {
		ok, err := h.Users.CompleteFirstLogin(ctx, id, hash)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		if !ok {
			// Another request completed the first login in between.
			httpjson.Error(w, h.Log, apperr.Conflictf("already_processed",
				"first-login password change was already completed"))
			return
		}
	} else if err := h.Users.SetPassword(ctx, id, hash); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]string{"status": "password_changed"})
}
