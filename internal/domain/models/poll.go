package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollOption is one choice on a poll. VoteCount is a cached projection of the
// vote ledger; the ledger is the source of truth.
type PollOption struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Text      string             `bson:"text" json:"text"`
	VoteCount int64              `bson:"vote_count" json:"voteCount"`
}

// Poll is a question with ordered options, attached to an event by reference.
// Votes are accepted only while now < ActiveTill.
type Poll struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID  primitive.ObjectID `bson:"event_id" json:"eventId"`
	Question string             `bson:"question" json:"question"`
	Options  []PollOption       `bson:"options" json:"options"`

	ActiveTill time.Time `bson:"active_till" json:"activeTill"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Expired reports whether the poll no longer accepts votes at the given time.
func (p *Poll) Expired(now time.Time) bool {
	return !now.Before(p.ActiveTill)
}

// Option returns the option with the given ID, or nil.
func (p *Poll) Option(id primitive.ObjectID) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

// PollVote is one vote-ledger entry. At most one exists per (poll, user),
// enforced by a unique index.
type PollVote struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PollID   primitive.ObjectID `bson:"poll_id" json:"pollId"`
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	OptionID primitive.ObjectID `bson:"option_id" json:"optionId"`

	VotedAt time.Time `bson:"voted_at" json:"votedAt"`
}
