package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	pollstore "github.com/littlenest/littlenest/internal/app/store/polls"
	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/txn"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type voteRequest struct {
	Action   string `json:"action" validate:"required,oneof=vote unvote"`
	OptionID string `json:"optionId" validate:"required"`
}

// Vote handles PATCH /api/events/{id}/poll: cast or withdraw one vote on the
// event's poll.
//
// The vote ledger is the source of truth; the option counters are a cached
// projection. Both are written in one transaction so readers never see them
// disagree. The unique (poll, user) index arbitrates concurrent duplicate
// votes. An expired poll accepts neither votes nor withdrawals: tallies are
// frozen the moment the poll closes.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("session user id is malformed"))
		return
	}

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid event id"))
		return
	}

	var req voteRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	optionID, err := primitive.ObjectIDFromHex(req.OptionID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("optionId is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("event not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if ev.PollID == nil {
		httpjson.Error(w, h.Log, apperr.NotFoundf("this event has no poll"))
		return
	}

	poll, err := h.Polls.GetByID(ctx, *ev.PollID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("poll not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if poll.Expired(time.Now().UTC()) {
		httpjson.Error(w, h.Log, apperr.New(apperr.Expired, "poll_expired",
			"this poll is closed and its tallies are frozen"))
		return
	}
	if poll.Option(optionID) == nil {
		httpjson.Error(w, h.Log, apperr.NotFoundf("poll option not found"))
		return
	}

	switch req.Action {
	case "vote":
		err = h.castVote(ctx, poll.ID, userID, optionID)
	case "unvote":
		err = h.withdrawVote(ctx, poll.ID, userID, optionID)
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			err = apperr.Wrap(apperr.TransactionFailed, "vote_failed",
				"the vote could not be recorded; nothing was applied", err)
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	// Re-read so the response reflects the committed tallies.
	poll, err = h.Polls.GetByID(ctx, poll.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, poll)
}

func (h *Handler) castVote(ctx context.Context, pollID, userID, optionID primitive.ObjectID) error {
	return txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		err := h.Polls.InsertVote(ctx, models.PollVote{
			PollID:   pollID,
			UserID:   userID,
			OptionID: optionID,
		})
		if err != nil {
			if errors.Is(err, pollstore.ErrAlreadyVoted) {
				return apperr.Conflictf("already_voted",
					"you have already voted on this poll")
			}
			return err
		}

		ok, err := h.Polls.IncOption(ctx, pollID, optionID, 1)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFoundf("poll option not found")
		}
		return nil
	})
}

func (h *Handler) withdrawVote(ctx context.Context, pollID, userID, optionID primitive.ObjectID) error {
	// Distinguish "never voted" from "voted for another option" up front so
	// the caller gets a precise answer; the guarded delete below still
	// arbitrates races.
	existing, err := h.Polls.GetVote(ctx, pollID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Conflictf("not_voted", "you have not voted on this poll")
		}
		return err
	}
	if existing.OptionID != optionID {
		return apperr.Conflictf("option_mismatch",
			"your vote is for a different option")
	}

	return txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		ok, err := h.Polls.DeleteVote(ctx, pollID, userID, optionID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflictf("not_voted", "you have not voted on this poll")
		}

		// The floor guard only clamps counter drift; the ledger entry we
		// just deleted is authoritative.
		if _, err := h.Polls.IncOption(ctx, pollID, optionID, -1); err != nil {
			return err
		}
		return nil
	})
}
