// Package memdoc provides an in-memory docstore.Collection for testing.
package memdoc

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/discochess/stash/internal/docstore"
)

// Compile-time check that Collection implements docstore.Collection.
var _ docstore.Collection = (*Collection)(nil)

// Collection is an in-memory document collection.
type Collection struct {
	mu   sync.RWMutex
	docs []bson.M
}

// New creates a collection holding docs.
func New(docs ...bson.M) *Collection {
	c := &Collection{}
	c.Insert(docs...)
	return c
}

// Insert appends docs to the collection.
func (c *Collection) Insert(docs ...bson.M) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		c.docs = append(c.docs, copyDoc(d))
	}
}

// FindAll returns copies of every document in insertion order.
func (c *Collection) FindAll(ctx context.Context) ([]bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]bson.M, len(c.docs))
	for i, d := range c.docs {
		out[i] = copyDoc(d)
	}
	return out, nil
}

// CountMatching counts documents whose fields equal every field of filter.
func (c *Collection) CountMatching(ctx context.Context, filter bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

// EstimatedCount returns the number of documents.
func (c *Collection) EstimatedCount(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// copyDoc makes a shallow copy of d.
func copyDoc(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
