// Package mongodoc implements docstore.Collection on MongoDB.
package mongodoc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/discochess/stash/internal/docstore"
)

// DefaultURI is the address of a local MongoDB server.
const DefaultURI = "mongodb://127.0.0.1:27017"

// Compile-time check that Collection implements docstore.Collection.
var _ docstore.Collection = (*Collection)(nil)

// Collection wraps a MongoDB collection.
type Collection struct {
	coll   *mongo.Collection
	client *mongo.Client // set when the Collection owns the connection
}

// New wraps an existing collection. The caller keeps ownership of its client.
func New(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

// Connect opens a client to uri and returns the named collection.
// Close disconnects the client.
func Connect(ctx context.Context, uri, database, collection string) (*Collection, error) {
	if uri == "" {
		uri = DefaultURI
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return &Collection{
		coll:   client.Database(database).Collection(collection),
		client: client,
	}, nil
}

// FindAll returns every document in the collection.
func (c *Collection) FindAll(ctx context.Context) ([]bson.M, error) {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	return docs, nil
}

// CountMatching counts the documents matching filter.
func (c *Collection) CountMatching(ctx context.Context, filter bson.M) (int64, error) {
	return c.coll.CountDocuments(ctx, filter)
}

// EstimatedCount returns the collection size from metadata.
func (c *Collection) EstimatedCount(ctx context.Context) (int64, error) {
	return c.coll.EstimatedDocumentCount(ctx)
}

// Close disconnects the client if this Collection opened it.
func (c *Collection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
