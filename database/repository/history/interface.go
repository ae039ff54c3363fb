package historyRepo

import (
	"context"

	"homelead/database"
	"homelead/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConversationRepository persists per-turn conversation records for the
// history and reporting endpoints. Records are append-only; nothing
// updates an entry once written.
type ConversationRepository interface {
	Append(ctx context.Context, record models.ConversationRecord) (string, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]models.ConversationRecord, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

type mongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo returns a new ConversationRepository instance using MongoDB.
func NewMongoConversationRepo() ConversationRepository {
	db := database.MongoClient.Database("homelead")
	return &mongoConversationRepo{
		coll: db.Collection("conversation_history"),
	}
}
