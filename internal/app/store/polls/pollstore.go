package pollstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAlreadyVoted is returned when the vote ledger already holds an entry for
// this (poll, user) pair. The unique index makes the guard structural.
var ErrAlreadyVoted = errors.New("user has already voted on this poll")

type Store struct {
	polls *mongo.Collection
	votes *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		polls: db.Collection("polls"),
		votes: db.Collection("poll_votes"),
	}
}

// Insert writes a new poll with zeroed counters. Callers run this inside the
// event creation transaction.
func (s *Store) Insert(ctx context.Context, p models.Poll) (models.Poll, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	for i := range p.Options {
		p.Options[i].ID = primitive.NewObjectID()
		p.Options[i].VoteCount = 0
	}

	if _, err := s.polls.InsertOne(ctx, p); err != nil {
		return models.Poll{}, err
	}
	return p, nil
}

// GetByID loads a poll by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	var p models.Poll
	if err := s.polls.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVote returns the ledger entry for (poll, user), or mongo.ErrNoDocuments.
func (s *Store) GetVote(ctx context.Context, pollID, userID primitive.ObjectID) (*models.PollVote, error) {
	var v models.PollVote
	err := s.votes.FindOne(ctx, bson.M{"poll_id": pollID, "user_id": userID}).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// InsertVote writes one ledger entry. The (poll_id, user_id) unique index
// turns a concurrent duplicate into ErrAlreadyVoted.
func (s *Store) InsertVote(ctx context.Context, v models.PollVote) error {
	v.ID = primitive.NewObjectID()
	v.VotedAt = time.Now().UTC()

	if _, err := s.votes.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrAlreadyVoted
		}
		return err
	}
	return nil
}

// DeleteVote removes the ledger entry for (poll, user, option). A zero
// deleted count means there was no matching entry (never voted, or voted for
// a different option).
func (s *Store) DeleteVote(ctx context.Context, pollID, userID, optionID primitive.ObjectID) (bool, error) {
	res, err := s.votes.DeleteOne(ctx, bson.M{
		"poll_id":   pollID,
		"user_id":   userID,
		"option_id": optionID,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// IncOption adjusts the cached counter of one option. Returns false when the
// filter matched nothing; for decrements that includes the vote_count > 0
// floor guard, which only clamps drift. The ledger is the source of truth.
func (s *Store) IncOption(ctx context.Context, pollID, optionID primitive.ObjectID, delta int64) (bool, error) {
	filter := bson.M{"_id": pollID, "options._id": optionID}
	if delta < 0 {
		filter["options"] = bson.M{"$elemMatch": bson.M{"_id": optionID, "vote_count": bson.M{"$gt": 0}}}
		delete(filter, "options._id")
	}

	res, err := s.polls.UpdateOne(ctx, filter,
		bson.M{"$inc": bson.M{"options.$.vote_count": delta}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// Recount derives each option's tally from the vote ledger and rewrites the
// cached counters. Used for reconciliation; returns the derived counts.
func (s *Store) Recount(ctx context.Context, pollID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	cur, err := s.votes.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"poll_id": pollID}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$option_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		OptionID primitive.ObjectID `bson:"_id"`
		Count    int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[primitive.ObjectID]int64, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Count
	}

	poll, err := s.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	for _, opt := range poll.Options {
		if _, err := s.polls.UpdateOne(ctx,
			bson.M{"_id": pollID, "options._id": opt.ID},
			bson.M{"$set": bson.M{"options.$.vote_count": counts[opt.ID]}}); err != nil {
			return nil, err
		}
	}
	return counts, nil
}
