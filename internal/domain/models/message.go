package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one parent↔teacher chat message. ConversationID is derived from
// the two participant IDs so both sides address the same thread.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID string             `bson:"conversation_id" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"senderId"`
	RecipientID    primitive.ObjectID `bson:"recipient_id" json:"recipientId"`

	Body string `bson:"body" json:"body"` // sanitized

	SentAt time.Time `bson:"sent_at" json:"sentAt"`
	ReadAt *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}
