package eventstore

import (
	"context"
	"time"

	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	events *mongo.Collection
	prefs  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		events: db.Collection("events"),
		prefs:  db.Collection("event_place_prefs"),
	}
}

// Insert writes a new event document. Callers run this inside the event
// creation transaction.
func (s *Store) Insert(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.events.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// InsertPlacePref writes the mandatory place-preference record for an event,
// inside the same transaction as the event insert.
func (s *Store) InsertPlacePref(ctx context.Context, p models.EventPlacePref) (models.EventPlacePref, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()

	if _, err := s.prefs.InsertOne(ctx, p); err != nil {
		return models.EventPlacePref{}, err
	}
	return p, nil
}

// SetPollID patches the poll back-reference onto the event. Written once by
// the event creation transaction; never updated afterwards.
func (s *Store) SetPollID(ctx context.Context, eventID, pollID primitive.ObjectID) error {
	_, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"poll_id": pollID, "updated_at": time.Now().UTC()}})
	return err
}

// GetByID loads an event by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetPlacePref loads the place-preference record for an event.
func (s *Store) GetPlacePref(ctx context.Context, eventID primitive.ObjectID) (*models.EventPlacePref, error) {
	var p models.EventPlacePref
	if err := s.prefs.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CountForEvent reports whether a place-preference record exists for the
// event; used by tests asserting transaction atomicity.
func (s *Store) CountForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.prefs.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// List returns one page of events, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Event, int64, error) {
	total, err := s.events.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := s.events.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Event
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
