package historyRepo

import (
	"context"
	"time"

	"homelead/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts a new conversation record and returns its ID.
func (r *mongoConversationRepo) Append(ctx context.Context, record models.ConversationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetBySessionID fetches all records for a session in turn order.
func (r *mongoConversationRepo) GetBySessionID(ctx context.Context, sessionID string) ([]models.ConversationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.ConversationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteBySessionID removes all records for a session.
func (r *mongoConversationRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
