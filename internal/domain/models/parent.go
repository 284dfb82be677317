package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Child is embedded on a parent profile. Age is bounded to 0..18 on create
// and update.
type Child struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name     string              `bson:"name" json:"name"`
	Age      int                 `bson:"age" json:"age"`
	SchoolID *primitive.ObjectID `bson:"school_id,omitempty" json:"schoolId,omitempty"`
}

// Parent is the role-specific profile for a parent account, 1:1 with its
// user by UserID. The profile exclusively owns its embedded children.
type Parent struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`

	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`

	Children []Child `bson:"children" json:"children"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Teacher is the role-specific profile for a teacher account, 1:1 with its
// user by UserID.
type Teacher struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`

	FirstName string              `bson:"first_name" json:"firstName"`
	LastName  string              `bson:"last_name" json:"lastName"`
	SchoolID  *primitive.ObjectID `bson:"school_id,omitempty" json:"schoolId,omitempty"`
	Subjects  []string            `bson:"subjects,omitempty" json:"subjects,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
