package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
MongoDB layout:

Collection: schemas (configurable)

Document structure:
{
    "_id": string,        // textual schema reference
    "document": string,   // raw contract document
    "updated_at": ISODate
}
*/

// mongoDoc represents a stored contract in MongoDB.
type mongoDoc struct {
	Ref       string    `bson:"_id"`
	Document  string    `bson:"document"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoSource stores contract documents in a MongoDB collection, keyed by
// the textual schema reference.
//
// The Mongo client is owned by the caller; Close does not disconnect it.
//
// Example:
//
//	source := schema.NewMongoSource(client.Database("normalize"))
//	validator := schema.NewJSONValidator(source)
type MongoSource struct {
	coll *mongo.Collection
}

// MongoOption configures MongoSource.
type MongoOption func(*mongoConfig)

type mongoConfig struct {
	collection string
}

// WithCollection sets a custom collection name (default "schemas").
func WithCollection(name string) MongoOption {
	return func(c *mongoConfig) {
		c.collection = name
	}
}

// NewMongoSource creates a MongoDB-backed schema source.
func NewMongoSource(db *mongo.Database, opts ...MongoOption) *MongoSource {
	cfg := &mongoConfig{collection: "schemas"}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MongoSource{coll: db.Collection(cfg.collection)}
}

// Fetch returns the document stored for ref.
func (s *MongoSource) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": ref.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	return []byte(doc.Document), nil
}

// Register stores document for ref, replacing any previous revision.
func (s *MongoSource) Register(ctx context.Context, ref Ref, document []byte) error {
	if ref.IsZero() {
		return fmt.Errorf("%w: empty ref", ErrMalformedRef)
	}
	if len(document) == 0 {
		return ErrEmptyDocument
	}

	doc := mongoDoc{
		Ref:       ref.String(),
		Document:  string(document),
		UpdatedAt: time.Now(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.Ref}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("register schema: %w", err)
	}
	return nil
}

// Close is a no-op; the Mongo client is owned by the caller.
func (s *MongoSource) Close() error {
	return nil
}

// Compile-time check.
var _ Source = (*MongoSource)(nil)
