package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses. Transitions are monotonic:
// pending → approved → account_created, or pending → rejected.
// Nothing leaves rejected or account_created.
const (
	ApplicationPending        = "pending"
	ApplicationApproved       = "approved"
	ApplicationRejected       = "rejected"
	ApplicationAccountCreated = "account_created"
)

// NonTerminalStatuses are the application states that still block a new
// submission for the same (email, school) pair.
var NonTerminalStatuses = []string{
	ApplicationPending,
	ApplicationApproved,
	ApplicationAccountCreated,
}

// ApplicantChild is the child named on an admission request.
type ApplicantChild struct {
	Name string `bson:"name" json:"name"`
	Age  int    `bson:"age" json:"age"` // 0..18, enforced at intake
}

// ApplicantParent is the contact submitting the request.
type ApplicantParent struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email" json:"email"` // lowercase
}

// Provenance captures where a public submission came from.
type Provenance struct {
	SourceIP  string `bson:"source_ip,omitempty" json:"-"`
	UserAgent string `bson:"user_agent,omitempty" json:"-"`
	Referrer  string `bson:"referrer,omitempty" json:"-"`
}

// Application is one admission request tying a prospective child/parent to a
// school. It is mutated by the applicant only while pending, and otherwise
// only by the admin review step.
type Application struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SchoolID primitive.ObjectID `bson:"school_id" json:"schoolId"`

	Child  ApplicantChild  `bson:"child" json:"child"`
	Parent ApplicantParent `bson:"parent" json:"parent"`

	EmergencyContact string `bson:"emergency_contact,omitempty" json:"emergencyContact,omitempty"`
	Address          string `bson:"address,omitempty" json:"address,omitempty"`
	Notes            string `bson:"notes,omitempty" json:"notes,omitempty"` // sanitized free text

	Status      string              `bson:"status" json:"status"`
	SubmittedAt time.Time           `bson:"submitted_at" json:"submittedAt"`
	ReviewedAt  *time.Time          `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	ReviewNotes string              `bson:"review_notes,omitempty" json:"reviewNotes,omitempty"`

	// Set by provisioning once the parent account exists.
	ParentAccountCreated bool                `bson:"parent_account_created" json:"parentAccountCreated"`
	ParentUserID         *primitive.ObjectID `bson:"parent_user_id,omitempty" json:"parentUserId,omitempty"`
	AccountCreatedAt     *time.Time          `bson:"account_created_at,omitempty" json:"accountCreatedAt,omitempty"`

	Provenance Provenance `bson:"provenance,omitempty" json:"-"`
}
