package testutil

import (
	"context"
	"testing"
	"time"

	applicationstore "github.com/littlenest/littlenest/internal/app/store/applications"
	schoolstore "github.com/littlenest/littlenest/internal/app/store/schools"
	userstore "github.com/littlenest/littlenest/internal/app/store/users"
	"github.com/littlenest/littlenest/internal/app/system/credentials"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures creates related documents for store and handler tests.
type Fixtures struct {
	t  *testing.T
	db *mongo.Database
}

// NewFixtures wraps a test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database { return f.db }

// CreateSchool inserts an active school.
func (f *Fixtures) CreateSchool(ctx context.Context, name string) models.School {
	f.t.Helper()
	sc, err := schoolstore.New(f.db).Create(ctx, models.School{
		Name:   name,
		City:   "Testville",
		Active: true,
	})
	if err != nil {
		f.t.Fatalf("fixture school: %v", err)
	}
	return sc
}

// CreateInactiveSchool inserts a school that refuses applications.
func (f *Fixtures) CreateInactiveSchool(ctx context.Context, name string) models.School {
	f.t.Helper()
	sc, err := schoolstore.New(f.db).Create(ctx, models.School{
		Name:   name,
		City:   "Testville",
		Active: false,
	})
	if err != nil {
		f.t.Fatalf("fixture school: %v", err)
	}
	return sc
}

// CreateUser inserts a user with the given role and a known password
// ("test-password").
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()
	hash, err := credentials.Hash("test-password")
	if err != nil {
		f.t.Fatalf("fixture hash: %v", err)
	}
	u, err := userstore.New(f.db).Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		f.t.Fatalf("fixture user: %v", err)
	}
	return u
}

// CreateAdmin inserts an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateParentUser inserts a parent user.
func (f *Fixtures) CreateParentUser(ctx context.Context, fullName, email string) models.User {
	return f.CreateUser(ctx, fullName, email, models.RoleParent)
}

// CreateApplication inserts a pending application for the school.
func (f *Fixtures) CreateApplication(ctx context.Context, schoolID primitive.ObjectID, parentEmail string) models.Application {
	f.t.Helper()
	a, err := applicationstore.New(f.db).Create(ctx, models.Application{
		SchoolID: schoolID,
		Child:    models.ApplicantChild{Name: "Sam Fixture", Age: 4},
		Parent: models.ApplicantParent{
			Name:  "Pat Fixture",
			Phone: "+15550001111",
			Email: parentEmail,
		},
		Address: "12 Main St",
	})
	if err != nil {
		f.t.Fatalf("fixture application: %v", err)
	}
	return a
}

// FutureTime returns a time d from now, for poll expiries.
func FutureTime(d time.Duration) time.Time {
	return time.Now().UTC().Add(d)
}
