package messages

import (
	"context"
	"errors"
	"net/http"

	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func senderID(r *http.Request) (primitive.ObjectID, error) {
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

type sendRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Body        string `json:"body" validate:"required,max=4000"`
}

// Send handles POST /api/messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	sender, err := senderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req sendRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	recipient, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("recipientId is not a valid id"))
		return
	}
	if recipient == sender {
		httpjson.Error(w, h.Log, apperr.Validationf("cannot send a message to yourself"))
		return
	}
	body := sanitize.Text(req.Body)
	if body == "" {
		httpjson.Error(w, h.Log, apperr.Validationf("body must not be empty"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, recipient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("recipient not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	msg, err := h.Messages.Insert(ctx, models.Message{
		SenderID:    sender,
		RecipientID: recipient,
		Body:        body,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, msg)
}

// Conversation handles GET /api/messages/{userId}: one page of the thread
// with that user, newest first.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	me, err := senderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	other, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("userId is not a valid id"))
		return
	}
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Messages.ListConversation(ctx, me, other, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"messages": rows,
		"meta":     p.MetaFor(total),
	})
}

// MarkRead handles POST /api/messages/{userId}/read: stamps every unread
// message from that user as read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	me, err := senderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	other, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("userId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Messages.MarkRead(ctx, me, other); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]string{"status": "read"})
}
