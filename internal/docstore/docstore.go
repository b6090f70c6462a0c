// Package docstore holds the document-database exercises: listing a
// collection, summarizing nginx access logs and ranking students.
package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection is the subset of a document collection the exercises use.
type Collection interface {
	// FindAll returns every document in the collection.
	FindAll(ctx context.Context) ([]bson.M, error)

	// CountMatching returns the number of documents equal to filter on
	// every field it names.
	CountMatching(ctx context.Context, filter bson.M) (int64, error)

	// EstimatedCount returns the collection size from metadata.
	EstimatedCount(ctx context.Context) (int64, error)
}

// ListAll returns every document in c. A nil collection yields an empty list.
func ListAll(ctx context.Context, c Collection) ([]bson.M, error) {
	if c == nil {
		return []bson.M{}, nil
	}
	docs, err := c.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}
