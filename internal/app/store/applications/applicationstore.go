package applicationstore

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

var (
	// ErrDuplicateOpen is returned when a non-terminal application already
	// exists for the same (email, school) pair.
	ErrDuplicateOpen = errors.New("an open application already exists for this email and school")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// Create inserts a new pending application. The partial unique index on
// (parent.email, school_id) rejects a second non-terminal application.
func (s *Store) Create(ctx context.Context, a models.Application) (models.Application, error) {
	a.ID = primitive.NewObjectID()
	a.Parent.Email = normalize.Email(a.Parent.Email)
	a.Parent.Name = normalize.Name(a.Parent.Name)
	a.Parent.Phone = normalize.Phone(a.Parent.Phone)
	a.Child.Name = normalize.Name(a.Child.Name)
	a.Status = models.ApplicationPending
	a.SubmittedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrDuplicateOpen
		}
		return models.Application{}, err
	}
	return a, nil
}

// GetByID loads an application by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var a models.Application
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDAndEmail loads an application only when the applicant email matches,
// for the public status endpoint and applicant edits.
func (s *Store) GetByIDAndEmail(ctx context.Context, id primitive.ObjectID, email string) (*models.Application, error) {
	var a models.Application
	filter := bson.M{"_id": id, "parent.email": normalize.Email(email)}
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PendingUpdate holds the fields the applicant may change while pending.
type PendingUpdate struct {
	ChildName        string
	ChildAge         int
	ParentName       string
	Phone            string
	EmergencyContact string
	Address          string
	Notes            string
}

// UpdatePending applies an applicant edit, guarded on status still being
// pending. Returns false when the guard matched nothing (already reviewed).
func (s *Store) UpdatePending(ctx context.Context, id primitive.ObjectID, email string, upd PendingUpdate) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "parent.email": normalize.Email(email), "status": models.ApplicationPending},
		bson.M{"$set": bson.M{
			"child.name":        normalize.Name(upd.ChildName),
			"child.age":         upd.ChildAge,
			"parent.name":       normalize.Name(upd.ParentName),
			"parent.phone":      normalize.Phone(upd.Phone),
			"emergency_contact": upd.EmergencyContact,
			"address":           upd.Address,
			"notes":             upd.Notes,
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// CancelPending withdraws a pending application. Returns false when it was
// already reviewed (or never existed for that email).
func (s *Store) CancelPending(ctx context.Context, id primitive.ObjectID, email string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":          id,
		"parent.email": normalize.Email(email),
		"status":       models.ApplicationPending,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// ReviewStamp carries the reviewer metadata for a status transition.
type ReviewStamp struct {
	ReviewerID primitive.ObjectID
	Notes      string
	At         time.Time
}

// MarkAccountCreated transitions pending → account_created and records the
// provisioning back-reference. The status filter is the race arbiter: a
// false return means a concurrent review won and the caller must report
// AlreadyProcessed.
func (s *Store) MarkAccountCreated(ctx context.Context, id primitive.ObjectID, stamp ReviewStamp, parentUserID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ApplicationPending},
		bson.M{"$set": bson.M{
			"status":                 models.ApplicationAccountCreated,
			"reviewed_by":            stamp.ReviewerID,
			"reviewed_at":            stamp.At,
			"review_notes":           stamp.Notes,
			"parent_account_created": true,
			"parent_user_id":         parentUserID,
			"account_created_at":     stamp.At,
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// MarkRejected transitions pending → rejected. Same race semantics as
// MarkAccountCreated.
func (s *Store) MarkRejected(ctx context.Context, id primitive.ObjectID, stamp ReviewStamp) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ApplicationPending},
		bson.M{"$set": bson.M{
			"status":       models.ApplicationRejected,
			"reviewed_by":  stamp.ReviewerID,
			"reviewed_at":  stamp.At,
			"review_notes": stamp.Notes,
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ListFilter narrows the admin application list.
type ListFilter struct {
	Status   string
	SchoolID *primitive.ObjectID
	From     *time.Time
	To       *time.Time
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.SchoolID != nil {
		q["school_id"] = *f.SchoolID
	}
	if f.From != nil || f.To != nil {
		window := bson.M{}
		if f.From != nil {
			window["$gte"] = *f.From
		}
		if f.To != nil {
			window["$lt"] = *f.To
		}
		q["submitted_at"] = window
	}
	return q
}

// List returns one page of applications, newest first, with the total count
// for pagination arithmetic.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.Application, int64, error) {
	q := f.query()

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Application
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// StatusCount is one row of the by-status aggregate.
type StatusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// CountByStatus aggregates application counts per status.
func (s *Store) CountByStatus(ctx context.Context, f ListFilter) ([]StatusCount, error) {
	match := f.query()
	delete(match, "status")

	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []StatusCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SchoolCount is one row of the by-school aggregate.
type SchoolCount struct {
	SchoolID primitive.ObjectID `bson:"_id" json:"schoolId"`
	Count    int64              `bson:"count" json:"count"`
}

// CountBySchool aggregates application counts per school.
func (s *Store) CountBySchool(ctx context.Context, f ListFilter) ([]SchoolCount, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: f.query()}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$school_id", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []SchoolCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// HasOpenForEmailSchool reports whether a non-terminal application exists for
// the pair. This is the synchronous pre-check; the partial unique index is
// the structural backstop.
func (s *Store) HasOpenForEmailSchool(ctx context.Context, email string, schoolID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"parent.email": normalize.Email(email),
		"school_id":    schoolID,
		"status":       bson.M{"$in": models.NonTerminalStatuses},
	})
	return n > 0, err
}
