package postcodeRepo

import (
	"context"
	"fmt"

	"homelead/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type serviceAreaDoc struct {
	Postcode string `bson:"postcode"`
}

// LoadServiceableAreas returns every covered postcode in canonical
// format, ordered by postcode so the result is deterministic.
func (r *mongoServiceAreaRepo) LoadServiceableAreas(ctx context.Context) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "postcode", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load service areas: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []serviceAreaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode service areas: %w", err)
	}

	postcodes := make([]string, 0, len(docs))
	for _, doc := range docs {
		postcodes = append(postcodes, utils.FormatPostcode(doc.Postcode))
	}
	return postcodes, nil
}

// LoadBlacklist returns explicitly non-serviced postcodes. These are
// stored raw; they are not required to be UK-shaped.
func (r *mongoServiceAreaRepo) LoadBlacklist(ctx context.Context) ([]string, error) {
	cursor, err := r.blockedColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked postcodes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []serviceAreaDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode blocked postcodes: %w", err)
	}

	blocked := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocked = append(blocked, doc.Postcode)
	}
	return blocked, nil
}
