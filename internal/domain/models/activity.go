package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity kinds a teacher can log for a child.
const (
	ActivityMeal = "meal"
	ActivityNap  = "nap"
	ActivityPlay = "play"
	ActivityNote = "note"
)

// ActivityKinds lists the accepted activity kinds.
var ActivityKinds = []string{ActivityMeal, ActivityNap, ActivityPlay, ActivityNote}

// Activity is one daily log entry a teacher records for a child. Parents read
// these by child and day.
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SchoolID  primitive.ObjectID `bson:"school_id" json:"schoolId"`
	ChildID   primitive.ObjectID `bson:"child_id" json:"childId"`
	TeacherID primitive.ObjectID `bson:"teacher_id" json:"teacherId"`

	Kind  string `bson:"kind" json:"kind"` // meal | nap | play | note
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	// Day is the calendar date the entry belongs to, truncated to midnight UTC.
	Day       time.Time `bson:"day" json:"day"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
