package parentstore

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

var (
	// ErrDuplicateProfile is returned when the user already has a parent
	// profile (unique user_id index).
	ErrDuplicateProfile = errors.New("a parent profile already exists for this user")

	// ErrChildAge is returned when a child age falls outside 0..18.
	ErrChildAge = errors.New("child age must be between 0 and 18")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("parents")}
}

func validAge(age int) bool { return age >= 0 && age <= 18 }

// Create inserts a parent profile. Children get IDs assigned and their ages
// validated.
func (s *Store) Create(ctx context.Context, p models.Parent) (models.Parent, error) {
	p.ID = primitive.NewObjectID()
	p.FirstName = normalize.Name(p.FirstName)
	p.LastName = normalize.Name(p.LastName)
	p.Phone = normalize.Phone(p.Phone)
	for i := range p.Children {
		if !validAge(p.Children[i].Age) {
			return models.Parent{}, ErrChildAge
		}
		p.Children[i].ID = primitive.NewObjectID()
		p.Children[i].Name = normalize.Name(p.Children[i].Name)
	}
	if p.Children == nil {
		p.Children = []models.Child{}
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Parent{}, ErrDuplicateProfile
		}
		return models.Parent{}, err
	}
	return p, nil
}

// GetByUserID loads the profile for a user. Returns mongo.ErrNoDocuments if
// absent.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Parent, error) {
	var p models.Parent
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// UpdateProfile updates the parent's own fields (not children).
func (s *Store) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"first_name": normalize.Name(upd.FirstName),
			"last_name":  normalize.Name(upd.LastName),
			"phone":      normalize.Phone(upd.Phone),
			"address":    upd.Address,
			"updated_at": time.Now().UTC(),
		}})
	return err
}

// AddChild appends a child to the profile, enforcing the age bound.
func (s *Store) AddChild(ctx context.Context, userID primitive.ObjectID, child models.Child) (models.Child, error) {
	if !validAge(child.Age) {
		return models.Child{}, ErrChildAge
	}
	child.ID = primitive.NewObjectID()
	child.Name = normalize.Name(child.Name)

	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$push": bson.M{"children": child},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.Child{}, err
	}
	if res.MatchedCount == 0 {
		return models.Child{}, mongo.ErrNoDocuments
	}
	return child, nil
}

// UpdateChild edits one embedded child by ID, enforcing the age bound.
// Returns false when the profile or child was not found.
func (s *Store) UpdateChild(ctx context.Context, userID, childID primitive.ObjectID, name string, age int) (bool, error) {
	if !validAge(age) {
		return false, ErrChildAge
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "children._id": childID},
		bson.M{"$set": bson.M{
			"children.$.name": normalize.Name(name),
			"children.$.age":  age,
			"updated_at":      time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// RemoveChild deletes one embedded child by ID.
func (s *Store) RemoveChild(ctx context.Context, userID, childID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$pull": bson.M{"children": bson.M{"_id": childID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
