package postcodeRepo

import (
	"context"

	"homelead/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceAreaRepository supplies the read-only postcode reference data
// the qualification engine validates against. It is loaded once at
// startup and never written during a conversation.
type ServiceAreaRepository interface {
	LoadServiceableAreas(ctx context.Context) ([]string, error)
	LoadBlacklist(ctx context.Context) ([]string, error)
}

type mongoServiceAreaRepo struct {
	coll        *mongo.Collection
	blockedColl *mongo.Collection
}

// NewMongoServiceAreaRepo returns a ServiceAreaRepository backed by MongoDB.
func NewMongoServiceAreaRepo() ServiceAreaRepository {
	db := database.MongoClient.Database("homelead")
	return &mongoServiceAreaRepo{
		coll:        db.Collection("service_areas"),
		blockedColl: db.Collection("blocked_postcodes"),
	}
}
