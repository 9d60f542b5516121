package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docbot/internal/config"
	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// MongoDocStore persists document records in a MongoDB collection so that
// uploads can be listed across restarts.
type MongoDocStore struct {
	coll *mongo.Collection
}

// NewMongoDocStore connects to MongoDB and returns a document store bound
// to the configured collection.
func NewMongoDocStore(ctx context.Context, cfg config.MongoConfig) (*MongoDocStore, error) {
	clientOptions := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "documents"
	}
	return &MongoDocStore{coll: client.Database(cfg.Database).Collection(collection)}, nil
}

// Put inserts or replaces the record for a document id.
func (s *MongoDocStore) Put(ctx context.Context, doc *schema.Document) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to store document record: %w", err)
	}
	return nil
}

// List returns every stored document record, newest first.
func (s *MongoDocStore) List(ctx context.Context) ([]*schema.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*schema.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// Delete removes the record for a document id.
func (s *MongoDocStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": documentID})
	if err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}
	return nil
}

var _ interfaces.DocStore = (*MongoDocStore)(nil)
