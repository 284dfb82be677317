package merchantstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/littlenest/littlenest/internal/app/system/normalize"
	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateProfile is returned when the user already has a storefront.
var ErrDuplicateProfile = errors.New("a merchant profile already exists for this user")

type Store struct {
	merchants *mongo.Collection
	services  *mongo.Collection
	products  *mongo.Collection
	coupons   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		merchants: db.Collection("merchants"),
		services:  db.Collection("merchant_services"),
		products:  db.Collection("merchant_products"),
		coupons:   db.Collection("merchant_coupons"),
	}
}

// Create inserts a merchant storefront profile.
func (s *Store) Create(ctx context.Context, m models.Merchant) (models.Merchant, error) {
	m.ID = primitive.NewObjectID()
	m.BusinessName = normalize.Name(m.BusinessName)
	m.Phone = normalize.Phone(m.Phone)

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.merchants.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Merchant{}, ErrDuplicateProfile
		}
		return models.Merchant{}, err
	}
	return m, nil
}

// GetByUserID loads the storefront for a merchant account.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Merchant, error) {
	var m models.Merchant
	if err := s.merchants.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID loads a storefront by its own ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Merchant, error) {
	var m models.Merchant
	if err := s.merchants.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListActive returns one page of active storefronts for public browsing.
func (s *Store) ListActive(ctx context.Context, p paging.Params) ([]models.Merchant, int64, error) {
	q := bson.M{"active": true}

	total, err := s.merchants.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "business_name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := s.merchants.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Merchant
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
