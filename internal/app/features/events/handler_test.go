package events_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/littlenest/littlenest/internal/app/features/events"
	eventstore "github.com/littlenest/littlenest/internal/app/store/events"
	pollstore "github.com/littlenest/littlenest/internal/app/store/polls"
	"github.com/littlenest/littlenest/internal/app/system/indexes"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/littlenest/littlenest/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*events.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	h := events.NewHandler(db, zap.NewNop())
	return h, db, testutil.NewFixtures(t, db)
}

func pageOne() paging.Params { return paging.Params{Page: 1, Limit: 20} }

func eventPayload(withPoll bool) map[string]any {
	payload := map[string]any{
		"title":     "Spring picnic",
		"message":   "Bring snacks!",
		"dates":     []string{time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339)},
		"startTime": "11:00",
		"endTime":   "14:00",
		"placePreference": map[string]any{
			"option":  models.PlacePrivateLocation,
			"address": "12 Main St",
		},
	}
	if withPoll {
		payload["poll"] = map[string]any{
			"question":   "Which day works best?",
			"options":    []string{"Saturday", "Sunday"},
			"activeTill": time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
		}
	}
	return payload
}

type eventEnvelope struct {
	Data struct {
		Event models.Event          `json:"event"`
		Place models.EventPlacePref `json:"placePreference"`
		Poll  *models.Poll          `json:"poll"`
	} `json:"data"`
}

func createEvent(t *testing.T, h *events.Handler, user models.User, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/api/events", payload)
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreate_WithPoll(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")

	rec := createEvent(t, h, owner, eventPayload(true))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body eventEnvelope
	testutil.DecodeBody(t, rec, &body)
	ev := body.Data.Event

	if ev.OwnerID != owner.ID {
		t.Errorf("owner = %v, want %v", ev.OwnerID, owner.ID)
	}
	if body.Data.Place.Option != models.PlacePrivateLocation {
		t.Errorf("place option = %q", body.Data.Place.Option)
	}
	if body.Data.Poll == nil || len(body.Data.Poll.Options) != 2 {
		t.Fatalf("poll = %+v, want 2 options", body.Data.Poll)
	}
	if ev.PollID == nil || *ev.PollID != body.Data.Poll.ID {
		t.Error("event does not reference the created poll")
	}

	// All three documents are visible after commit.
	if _, err := eventstore.New(db).GetPlacePref(ctx, ev.ID); err != nil {
		t.Errorf("place pref not persisted: %v", err)
	}
	if _, err := pollstore.New(db).GetByID(ctx, body.Data.Poll.ID); err != nil {
		t.Errorf("poll not persisted: %v", err)
	}
}

func TestCreate_WithoutPoll(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")

	rec := createEvent(t, h, owner, eventPayload(false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body eventEnvelope
	testutil.DecodeBody(t, rec, &body)
	if body.Data.Event.PollID != nil || body.Data.Poll != nil {
		t.Error("event without poll must not reference one")
	}
}

func TestCreate_PlaceVariantValidation(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")

	// Private location without an address.
	payload := eventPayload(false)
	payload["placePreference"] = map[string]any{"option": models.PlacePrivateLocation}
	if rec := createEvent(t, h, owner, payload); rec.Code != http.StatusBadRequest {
		t.Errorf("missing address: status = %d, want 400", rec.Code)
	}

	// Unknown discriminator.
	payload["placePreference"] = map[string]any{"option": "Teleport", "address": "x"}
	if rec := createEvent(t, h, owner, payload); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown option: status = %d, want 400", rec.Code)
	}

	// Restaurant list without restaurants.
	payload["placePreference"] = map[string]any{"option": models.PlaceRestaurantList}
	if rec := createEvent(t, h, owner, payload); rec.Code != http.StatusBadRequest {
		t.Errorf("empty restaurants: status = %d, want 400", rec.Code)
	}

	// Nothing leaked into the collections.
	if _, total, err := eventstore.New(db).List(ctx, pageOne()); err != nil || total != 0 {
		t.Errorf("events persisted after failed validation: total=%d err=%v", total, err)
	}
}

func TestCreate_PastPollExpiryRejected(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")

	payload := eventPayload(true)
	payload["poll"].(map[string]any)["activeTill"] = time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if rec := createEvent(t, h, owner, payload); rec.Code != http.StatusBadRequest {
		t.Errorf("past activeTill: status = %d, want 400", rec.Code)
	}
}

func vote(t *testing.T, h *events.Handler, user models.User, eventID, action, optionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPatch, "/api/events/"+eventID+"/poll",
		map[string]string{"action": action, "optionId": optionID})
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "id", eventID)
	rec := httptest.NewRecorder()
	h.Vote(rec, req)
	return rec
}

// setupPoll creates an event with a poll and returns the event ID and poll.
func setupPoll(t *testing.T, h *events.Handler, fx *testutil.Fixtures) (models.User, string, models.Poll) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")
	rec := createEvent(t, h, owner, eventPayload(true))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", rec.Code, rec.Body.String())
	}
	var body eventEnvelope
	testutil.DecodeBody(t, rec, &body)
	return owner, body.Data.Event.ID.Hex(), *body.Data.Poll
}

func TestVote_LedgerAndCounterMove(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner, eventID, poll := setupPoll(t, h, fx)
	voter := fx.CreateParentUser(ctx, "Voter One", "voter@example.com")
	optID := poll.Options[0].ID

	rec := vote(t, h, voter, eventID, "vote", optID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("vote: %d %s", rec.Code, rec.Body.String())
	}

	polls := pollstore.New(db)
	got, err := polls.GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.Option(optID).VoteCount; n != 1 {
		t.Errorf("counter = %d, want 1", n)
	}
	ledger, err := polls.GetVote(ctx, poll.ID, voter.ID)
	if err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if ledger.OptionID != optID {
		t.Errorf("ledger option = %v, want %v", ledger.OptionID, optID)
	}

	// The owner votes too; tallies are per user.
	if rec := vote(t, h, owner, eventID, "vote", optID.Hex()); rec.Code != http.StatusOK {
		t.Fatalf("owner vote: %d %s", rec.Code, rec.Body.String())
	}
	got, _ = polls.GetByID(ctx, poll.ID)
	if n := got.Option(optID).VoteCount; n != 2 {
		t.Errorf("counter = %d, want 2", n)
	}
}

func TestVote_DuplicateRejected(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, eventID, poll := setupPoll(t, h, fx)
	voter := fx.CreateParentUser(ctx, "Voter One", "voter@example.com")

	if rec := vote(t, h, voter, eventID, "vote", poll.Options[0].ID.Hex()); rec.Code != http.StatusOK {
		t.Fatalf("first vote: %d", rec.Code)
	}

	// Same option and a different option both hit the one-vote rule.
	rec := vote(t, h, voter, eventID, "vote", poll.Options[0].ID.Hex())
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "already_voted" {
		t.Errorf("repeat vote: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}
	rec = vote(t, h, voter, eventID, "vote", poll.Options[1].ID.Hex())
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "already_voted" {
		t.Errorf("switch vote: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}

	// Counter unchanged by the rejected attempts.
	got, err := pollstore.New(db).GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.Option(poll.Options[0].ID).VoteCount; n != 1 {
		t.Errorf("counter = %d, want 1", n)
	}
}

func TestUnvote_RequiresMatchingOption(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, eventID, poll := setupPoll(t, h, fx)
	voter := fx.CreateParentUser(ctx, "Voter One", "voter@example.com")

	// Unvote before voting.
	rec := vote(t, h, voter, eventID, "unvote", poll.Options[0].ID.Hex())
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "not_voted" {
		t.Errorf("unvote before voting: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}

	if rec := vote(t, h, voter, eventID, "vote", poll.Options[0].ID.Hex()); rec.Code != http.StatusOK {
		t.Fatalf("vote: %d", rec.Code)
	}

	// Unvote the wrong option.
	rec = vote(t, h, voter, eventID, "unvote", poll.Options[1].ID.Hex())
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "option_mismatch" {
		t.Errorf("unvote wrong option: status=%d code=%q", rec.Code, testutil.ErrorCode(t, rec))
	}

	// Correct unvote removes the ledger entry and decrements.
	if rec := vote(t, h, voter, eventID, "unvote", poll.Options[0].ID.Hex()); rec.Code != http.StatusOK {
		t.Fatalf("unvote: %d %s", rec.Code, rec.Body.String())
	}
	polls := pollstore.New(db)
	if _, err := polls.GetVote(ctx, poll.ID, voter.ID); err == nil {
		t.Error("ledger entry not removed")
	}
	got, err := polls.GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.Option(poll.Options[0].ID).VoteCount; n != 0 {
		t.Errorf("counter = %d, want 0", n)
	}

	// Voting again after unvote is allowed.
	if rec := vote(t, h, voter, eventID, "vote", poll.Options[1].ID.Hex()); rec.Code != http.StatusOK {
		t.Errorf("re-vote after unvote: %d", rec.Code)
	}
}

func TestVote_ExpiredPollFrozen(t *testing.T) {
	h, db, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	voter := fx.CreateParentUser(ctx, "Voter One", "voter@example.com")

	// Build an already-expired poll directly in the stores.
	evs, polls := eventstore.New(db), pollstore.New(db)
	ev, err := evs.Insert(ctx, models.Event{
		OwnerID:   primitive.NewObjectID(),
		Title:     "Old event",
		Dates:     []time.Time{time.Now().UTC()},
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if err != nil {
		t.Fatalf("Insert event: %v", err)
	}
	poll, err := polls.Insert(ctx, models.Poll{
		EventID:    ev.ID,
		Question:   "Too late?",
		Options:    []models.PollOption{{Text: "Yes"}, {Text: "No"}},
		ActiveTill: time.Now().UTC().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("Insert poll: %v", err)
	}
	if err := evs.SetPollID(ctx, ev.ID, poll.ID); err != nil {
		t.Fatalf("SetPollID: %v", err)
	}

	for _, action := range []string{"vote", "unvote"} {
		rec := vote(t, h, voter, ev.ID.Hex(), action, poll.Options[0].ID.Hex())
		if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "poll_expired" {
			t.Errorf("%s on expired poll: status=%d code=%q", action, rec.Code, testutil.ErrorCode(t, rec))
		}
	}
}

func TestVote_EventWithoutPoll(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateParentUser(ctx, "Owner One", "owner@example.com")
	rec := createEvent(t, h, owner, eventPayload(false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	var body eventEnvelope
	testutil.DecodeBody(t, rec, &body)

	rec = vote(t, h, owner, body.Data.Event.ID.Hex(), "vote", primitive.NewObjectID().Hex())
	if rec.Code != http.StatusNotFound {
		t.Errorf("vote on poll-less event: status = %d, want 404", rec.Code)
	}
}
