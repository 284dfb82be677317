package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Place preference variants for an event. The discriminator decides which
// fields of PlaceDetail are meaningful.
const (
	PlacePrivateLocation = "Private location"
	PlaceChooseOnMap     = "Choose on map"
	PlaceRestaurantList  = "Restaurant from list"
)

// PlacePreferences lists the accepted discriminator values.
var PlacePreferences = []string{
	PlacePrivateLocation,
	PlaceChooseOnMap,
	PlaceRestaurantList,
}

// Restaurant is one entry of a "Restaurant from list" preference.
type Restaurant struct {
	Name    string `bson:"name" json:"name"`
	PlaceID string `bson:"place_id" json:"placeId"`
	Address string `bson:"address" json:"address"`
}

// EventPlacePref is the mandatory place-preference record for an event,
// keyed by EventID. Exactly one exists per event once the event transaction
// commits.
type EventPlacePref struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"eventId"`

	Option string `bson:"option" json:"option"` // discriminator

	// "Private location"
	Address string `bson:"address,omitempty" json:"address,omitempty"`

	// "Choose on map"
	Lat              float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng              float64 `bson:"lng,omitempty" json:"lng,omitempty"`
	FormattedAddress string  `bson:"formatted_address,omitempty" json:"formattedAddress,omitempty"`

	// "Restaurant from list"
	Restaurants []Restaurant `bson:"restaurants,omitempty" json:"restaurants,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Event is created by a user and owns exactly one place-preference record
// and zero or one poll. PollID is set iff a poll was supplied at creation.
type Event struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"ownerId"`

	Title    string `bson:"title" json:"title"`
	Message  string `bson:"message,omitempty" json:"message,omitempty"` // sanitized free text
	Category string `bson:"category,omitempty" json:"category,omitempty"`

	Dates     []time.Time `bson:"dates" json:"dates"`
	StartTime string      `bson:"start_time" json:"startTime"` // "18:00"
	EndTime   string      `bson:"end_time" json:"endTime"`

	PollID *primitive.ObjectID `bson:"poll_id,omitempty" json:"pollId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
