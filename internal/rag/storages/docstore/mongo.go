package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// MongoDocStore persists full chunk records in MongoDB, one Mongo collection
// per docqa collection, keyed by chunk ID. Writes use replace-upserts so
// re-ingestion overwrites instead of duplicating.
type MongoDocStore struct {
	db *mongo.Database
}

// NewMongoDocStore creates a store over the given database.
func NewMongoDocStore(client *mongo.Client, database string) *MongoDocStore {
	return &MongoDocStore{db: client.Database(database)}
}

// Add upserts chunks by their ID.
func (s *MongoDocStore) Add(ctx context.Context, collection string, chunks map[string]*schema.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(chunks))
	for id, chunk := range chunks {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(chunk).
			SetUpsert(true))
	}

	_, err := s.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to write chunks to doc store: %w", err)
	}
	return nil
}

// Get returns the stored chunks for the given IDs. Missing IDs are absent
// from the result, not errors.
func (s *MongoDocStore) Get(ctx context.Context, collection string, ids []string) (map[string]*schema.Chunk, error) {
	if len(ids) == 0 {
		return map[string]*schema.Chunk{}, nil
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks from doc store: %w", err)
	}
	defer cursor.Close(ctx)

	result := make(map[string]*schema.Chunk, len(ids))
	for cursor.Next(ctx) {
		var chunk schema.Chunk
		if err := cursor.Decode(&chunk); err != nil {
			return nil, fmt.Errorf("failed to decode chunk: %w", err)
		}
		result[chunk.ID] = &chunk
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("doc store cursor failed: %w", err)
	}
	return result, nil
}

// DeleteCollection drops the whole Mongo collection for the namespace.
// Dropping a missing collection is a no-op.
func (s *MongoDocStore) DeleteCollection(ctx context.Context, collection string) error {
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop doc store collection %s: %w", collection, err)
	}
	return nil
}

var _ interfaces.DocStore = (*MongoDocStore)(nil)
