package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleParent   = "parent"
	RoleTeacher  = "teacher"
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is the identity record behind every account: parents provisioned from
// approved applications, teachers, admins, and marketplace merchants.
//
// Provisioned accounts start with IsFirstLogin=true and the issued credential
// kept in TemporaryPassword; the first-login password change clears both in a
// single update.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"fullName"`
	Email        string             `bson:"email" json:"email"` // lowercase, globally unique
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // parent | teacher | admin | merchant
	Status       string             `bson:"status" json:"accountStatus"`

	IsFirstLogin      bool   `bson:"is_first_login" json:"isFirstLogin"`
	TemporaryPassword string `bson:"temporary_password,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
