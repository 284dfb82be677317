package activitystore

import (
	"context"
	"errors"
	"time"

	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errBadKind = errors.New(`kind must be "meal"|"nap"|"play"|"note"`)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activities")}
}

// Create inserts a daily log entry, truncating Day to midnight UTC.
func (s *Store) Create(ctx context.Context, a models.Activity) (models.Activity, error) {
	valid := false
	for _, k := range models.ActivityKinds {
		if a.Kind == k {
			valid = true
			break
		}
	}
	if !valid {
		return models.Activity{}, errBadKind
	}

	a.ID = primitive.NewObjectID()
	a.Day = a.Day.UTC().Truncate(24 * time.Hour)
	a.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// ListByChildDay returns the entries for one child on one calendar day,
// oldest first.
func (s *Store) ListByChildDay(ctx context.Context, childID primitive.ObjectID, day time.Time) ([]models.Activity, error) {
	q := bson.M{
		"child_id": childID,
		"day":      day.UTC().Truncate(24 * time.Hour),
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Activity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
