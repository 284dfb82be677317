package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// School is a daycare/school tenant that accepts applications and hosts
// enrolled children.
type School struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	City    string             `bson:"city" json:"city"`
	Address string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone   string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string             `bson:"email,omitempty" json:"email,omitempty"`
	About   string             `bson:"about,omitempty" json:"about,omitempty"`

	// Inactive schools are hidden from discovery and refuse new applications.
	Active bool `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
