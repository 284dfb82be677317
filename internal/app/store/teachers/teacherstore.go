package teacherstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/littlenest/littlenest/internal/app/system/normalize"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateProfile is returned when the user already has a teacher profile.
var ErrDuplicateProfile = errors.New("a teacher profile already exists for this user")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teachers")}
}

// Create inserts a teacher profile.
func (s *Store) Create(ctx context.Context, t models.Teacher) (models.Teacher, error) {
	t.ID = primitive.NewObjectID()
	t.FirstName = normalize.Name(t.FirstName)
	t.LastName = normalize.Name(t.LastName)

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Teacher{}, ErrDuplicateProfile
		}
		return models.Teacher{}, err
	}
	return t, nil
}

// GetByUserID loads the profile for a user.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Teacher, error) {
	var t models.Teacher
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListBySchool returns the teachers attached to a school.
func (s *Store) ListBySchool(ctx context.Context, schoolID primitive.ObjectID) ([]models.Teacher, error) {
	cur, err := s.c.Find(ctx, bson.M{"school_id": schoolID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Teacher
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
