package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"github.com/littlenest/littlenest/internal/app/system/auth"
	"github.com/littlenest/littlenest/internal/app/system/httpjson"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/app/system/sanitize"
	"github.com/littlenest/littlenest/internal/app/system/timeouts"
	"github.com/littlenest/littlenest/internal/app/system/txn"
	"github.com/littlenest/littlenest/internal/app/system/validate"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type restaurantPayload struct {
	Name    string `json:"name" validate:"required,max=200"`
	PlaceID string `json:"placeId,omitempty" validate:"max=200"`
	Address string `json:"address,omitempty" validate:"max=300"`
}

type placePrefPayload struct {
	Option           string              `json:"option" validate:"required"`
	Address          string              `json:"address,omitempty" validate:"max=300"`
	Lat              float64             `json:"lat,omitempty"`
	Lng              float64             `json:"lng,omitempty"`
	FormattedAddress string              `json:"formattedAddress,omitempty" validate:"max=300"`
	Restaurants      []restaurantPayload `json:"restaurants,omitempty" validate:"dive"`
}

type pollPayload struct {
	Question   string    `json:"question" validate:"required,max=300"`
	Options    []string  `json:"options" validate:"required,min=2,max=10,dive,required,max=200"`
	ActiveTill time.Time `json:"activeTill" validate:"required"`
}

type createRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message,omitempty" validate:"max=2000"`
	Category string `json:"category,omitempty" validate:"max=100"`

	Dates     []time.Time `json:"dates" validate:"required,min=1,max=10"`
	StartTime string      `json:"startTime" validate:"required,max=10"`
	EndTime   string      `json:"endTime" validate:"required,max=10"`

	PlacePreference placePrefPayload `json:"placePreference" validate:"required"`
	Poll            *pollPayload     `json:"poll,omitempty"`
}

// validatePlacePref checks the variant-specific fields behind the
// discriminator.
func validatePlacePref(p placePrefPayload) error {
	switch p.Option {
	case models.PlacePrivateLocation:
		if p.Address == "" {
			return apperr.Validationf("placePreference.address is required for %q", p.Option)
		}
	case models.PlaceChooseOnMap:
		if p.Lat == 0 && p.Lng == 0 {
			return apperr.Validationf("placePreference.lat/lng are required for %q", p.Option)
		}
	case models.PlaceRestaurantList:
		if len(p.Restaurants) == 0 {
			return apperr.Validationf("placePreference.restaurants must not be empty for %q", p.Option)
		}
	default:
		return apperr.Validationf("placePreference.option must be one of %v", models.PlacePreferences)
	}
	return nil
}

type createResponse struct {
	Event models.Event          `json:"event"`
	Place models.EventPlacePref `json:"placePreference"`
	Poll  *models.Poll          `json:"poll,omitempty"`
}

// Create handles POST /api/events.
//
// The event, its place-preference record, and the optional poll are written
// in one transaction: either all of them become visible or none do. When a
// poll is supplied the event's poll back-reference is set inside the same
// transaction, so no committed event ever points at a missing poll.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	su, err := auth.MustCurrentUser(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(su.ID)
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
	if err := validatePlacePref(req.PlacePreference); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.Poll != nil && !req.Poll.ActiveTill.After(time.Now().UTC()) {
		httpjson.Error(w, h.Log, apperr.Validationf("poll.activeTill must be in the future"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// The session only proves who the caller was at sign-in; the account
	// must still exist.
	if _, err := h.Users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("user account not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	var resp createResponse
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		ev, err := h.Events.Insert(ctx, models.Event{
			OwnerID:   ownerID,
			Title:     req.Title,
			Message:   sanitize.Text(req.Message),
			Category:  req.Category,
			Dates:     req.Dates,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			return err
		}

		pref := models.EventPlacePref{
			EventID:          ev.ID,
			Option:           req.PlacePreference.Option,
			Address:          req.PlacePreference.Address,
			Lat:              req.PlacePreference.Lat,
			Lng:              req.PlacePreference.Lng,
			FormattedAddress: req.PlacePreference.FormattedAddress,
		}
		for _, rest := range req.PlacePreference.Restaurants {
			pref.Restaurants = append(pref.Restaurants, models.Restaurant{
				Name:    rest.Name,
				PlaceID: rest.PlaceID,
				Address: rest.Address,
			})
		}
		if pref, err = h.Events.InsertPlacePref(ctx, pref); err != nil {
			return err
		}

		resp = createResponse{Event: ev, Place: pref}

		if req.Poll == nil {
			return nil
		}
		poll := models.Poll{
			EventID:    ev.ID,
			Question:   req.Poll.Question,
			ActiveTill: req.Poll.ActiveTill.UTC(),
		}
		for _, text := range req.Poll.Options {
			poll.Options = append(poll.Options, models.PollOption{Text: text})
		}
		if poll, err = h.Polls.Insert(ctx, poll); err != nil {
			return err
		}
		if err := h.Events.SetPollID(ctx, ev.ID, poll.ID); err != nil {
			return err
		}
		resp.Event.PollID = &poll.ID
		resp.Poll = &poll
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			err = apperr.Wrap(apperr.TransactionFailed, "event_creation_failed",
				"event creation failed; nothing was applied", err)
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.Created(w, resp)
}

// Show handles GET /api/events/{id}, returning the event with its place
// preference and poll.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validationf("id is not a valid event id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFoundf("event not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	resp := createResponse{Event: *ev}
	if pref, err := h.Events.GetPlacePref(ctx, id); err == nil {
		resp.Place = *pref
	}
	if ev.PollID != nil {
		if poll, err := h.Polls.GetByID(ctx, *ev.PollID); err == nil {
			resp.Poll = poll
		}
	}

	httpjson.OK(w, resp)
}

// List handles GET /api/events with offset pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, total, err := h.Events.List(ctx, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	httpjson.OK(w, map[string]any{
		"events": rows,
		"meta":   p.MetaFor(total),
	})
}
