package pollstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	pollstore "github.com/littlenest/littlenest/internal/app/store/polls"
	"github.com/littlenest/littlenest/internal/app/system/indexes"
	"github.com/littlenest/littlenest/internal/domain/models"
	"github.com/littlenest/littlenest/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) *pollstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return pollstore.New(db)
}

func insertPoll(t *testing.T, store *pollstore.Store, ctx context.Context) models.Poll {
	t.Helper()
	poll, err := store.Insert(ctx, models.Poll{
		EventID:  primitive.NewObjectID(),
		Question: "Where should we meet?",
		Options: []models.PollOption{
			{Text: "Park", VoteCount: 99}, // counter must be zeroed on insert
			{Text: "Museum"},
		},
		ActiveTill: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Insert poll: %v", err)
	}
	return poll
}

func TestInsert_AssignsOptionIDsAndZeroesCounters(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poll := insertPoll(t, store, ctx)
	if len(poll.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(poll.Options))
	}
	for i, opt := range poll.Options {
		if opt.ID.IsZero() {
			t.Errorf("option %d has no ID", i)
		}
		if opt.VoteCount != 0 {
			t.Errorf("option %d counter = %d, want 0", i, opt.VoteCount)
		}
	}
}

func TestInsertVote_DuplicateRejected(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poll := insertPoll(t, store, ctx)
	userID := primitive.NewObjectID()

	vote := models.PollVote{PollID: poll.ID, UserID: userID, OptionID: poll.Options[0].ID}
	if err := store.InsertVote(ctx, vote); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}

	// Same user, same poll, even a different option: the unique index blocks.
	err := store.InsertVote(ctx, models.PollVote{
		PollID: poll.ID, UserID: userID, OptionID: poll.Options[1].ID,
	})
	if !errors.Is(err, pollstore.ErrAlreadyVoted) {
		t.Fatalf("err = %v, want ErrAlreadyVoted", err)
	}

	// A different user is fine.
	if err := store.InsertVote(ctx, models.PollVote{
		PollID: poll.ID, UserID: primitive.NewObjectID(), OptionID: poll.Options[0].ID,
	}); err != nil {
		t.Fatalf("InsertVote for second user: %v", err)
	}
}

func TestIncOption_FloorGuard(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poll := insertPoll(t, store, ctx)
	optID := poll.Options[0].ID

	ok, err := store.IncOption(ctx, poll.ID, optID, 1)
	if err != nil || !ok {
		t.Fatalf("IncOption +1: ok=%v err=%v", ok, err)
	}
	ok, err = store.IncOption(ctx, poll.ID, optID, -1)
	if err != nil || !ok {
		t.Fatalf("IncOption -1: ok=%v err=%v", ok, err)
	}

	// Counter is now 0; a decrement must not match.
	ok, err = store.IncOption(ctx, poll.ID, optID, -1)
	if err != nil {
		t.Fatalf("IncOption below floor: %v", err)
	}
	if ok {
		t.Fatal("decrement below zero must not match")
	}

	got, err := store.GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.Option(optID).VoteCount; n != 0 {
		t.Errorf("counter = %d, want 0", n)
	}
}

func TestDeleteVote_OptionMismatch(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poll := insertPoll(t, store, ctx)
	userID := primitive.NewObjectID()
	if err := store.InsertVote(ctx, models.PollVote{
		PollID: poll.ID, UserID: userID, OptionID: poll.Options[0].ID,
	}); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}

	// Deleting against the wrong option matches nothing.
	ok, err := store.DeleteVote(ctx, poll.ID, userID, poll.Options[1].ID)
	if err != nil {
		t.Fatalf("DeleteVote wrong option: %v", err)
	}
	if ok {
		t.Fatal("delete with mismatched option must not match")
	}

	ok, err = store.DeleteVote(ctx, poll.ID, userID, poll.Options[0].ID)
	if err != nil || !ok {
		t.Fatalf("DeleteVote: ok=%v err=%v", ok, err)
	}
}

func TestRecount_RestoresCountersFromLedger(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	poll := insertPoll(t, store, ctx)
	for i := 0; i < 3; i++ {
		if err := store.InsertVote(ctx, models.PollVote{
			PollID: poll.ID, UserID: primitive.NewObjectID(), OptionID: poll.Options[0].ID,
		}); err != nil {
			t.Fatalf("InsertVote %d: %v", i, err)
		}
	}
	if err := store.InsertVote(ctx, models.PollVote{
		PollID: poll.ID, UserID: primitive.NewObjectID(), OptionID: poll.Options[1].ID,
	}); err != nil {
		t.Fatalf("InsertVote: %v", err)
	}

	// Drift the cached counter, then reconcile.
	if _, err := store.IncOption(ctx, poll.ID, poll.Options[0].ID, 7); err != nil {
		t.Fatalf("IncOption drift: %v", err)
	}

	counts, err := store.Recount(ctx, poll.ID)
	if err != nil {
		t.Fatalf("Recount: %v", err)
	}
	if counts[poll.Options[0].ID] != 3 || counts[poll.Options[1].ID] != 1 {
		t.Errorf("derived counts = %v", counts)
	}

	got, err := store.GetByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n := got.Option(poll.Options[0].ID).VoteCount; n != 3 {
		t.Errorf("counter after recount = %d, want 3", n)
	}
}

func TestPollExpired(t *testing.T) {
	now := time.Now().UTC()
	p := models.Poll{ActiveTill: now.Add(time.Minute)}
	if p.Expired(now) {
		t.Error("poll with future ActiveTill reported expired")
	}
	if !p.Expired(now.Add(time.Minute)) {
		t.Error("poll at ActiveTill must be expired")
	}
}
