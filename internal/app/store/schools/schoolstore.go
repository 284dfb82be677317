package schoolstore

import (
	"context"
	"regexp"
	"time"

	"github.com/littlenest/littlenest/internal/app/system/normalize"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schools")}
}

// Create inserts a school. New schools start active unless stated otherwise.
func (s *Store) Create(ctx context.Context, sc models.School) (models.School, error) {
	sc.ID = primitive.NewObjectID()
	sc.Name = normalize.Name(sc.Name)
	sc.City = normalize.Name(sc.City)

	now := time.Now().UTC()
	sc.CreatedAt = now
	sc.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sc); err != nil {
		return models.School{}, err
	}
	return sc, nil
}

// GetByID loads a school by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.School, error) {
	var sc models.School
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// GetActiveByID loads a school only if it is accepting applications.
func (s *Store) GetActiveByID(ctx context.Context, id primitive.ObjectID) (*models.School, error) {
	var sc models.School
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Update edits a school's editable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, sc models.School) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":       normalize.Name(sc.Name),
			"city":       normalize.Name(sc.City),
			"address":    sc.Address,
			"phone":      normalize.Phone(sc.Phone),
			"email":      normalize.Email(sc.Email),
			"about":      sc.About,
			"active":     sc.Active,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// List returns one page of active schools for public discovery, optionally
// filtered by a name prefix and/or city.
func (s *Store) List(ctx context.Context, search, city string, p paging.Params) ([]models.School, int64, error) {
	q := bson.M{"active": true}
	if search != "" {
		q["name"] = bson.M{"$regex": "^" + regexp.QuoteMeta(search), "$options": "i"}
	}
	if city != "" {
		q["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(city) + "$", "$options": "i"}
	}

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.School
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
