package messagestore

import (
	"context"
	"time"

	"github.com/littlenest/littlenest/internal/app/system/paging"
	"github.com/littlenest/littlenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// ConversationID derives a stable thread key from the two participant IDs,
// ordered so both directions address the same thread.
func ConversationID(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah < bh {
		return ah + ":" + bh
	}
	return bh + ":" + ah
}

// Insert writes one message into its conversation.
func (s *Store) Insert(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	m.ConversationID = ConversationID(m.SenderID, m.RecipientID)
	m.SentAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListConversation returns one page of a thread, newest first.
func (s *Store) ListConversation(ctx context.Context, a, b primitive.ObjectID, p paging.Params) ([]models.Message, int64, error) {
	q := bson.M{"conversation_id": ConversationID(a, b)}

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var rows []models.Message
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkRead stamps every unread message sent to reader in the thread.
func (s *Store) MarkRead(ctx context.Context, reader, other primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateMany(ctx,
		bson.M{
			"conversation_id": ConversationID(reader, other),
			"recipient_id":    reader,
			"read_at":         nil,
		},
		bson.M{"$set": bson.M{"read_at": now}})
	return err
}
