package mongodoc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/discochess/stash/internal/docstore"
)

func TestCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("FindAll", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: "Holberton school"}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "_id", Value: 2}, {Key: "name", Value: "UCSD"}}),
		)

		docs, err := docstore.ListAll(ctx, New(mt.Coll))
		if err != nil {
			mt.Fatalf("ListAll() error = %v", err)
		}
		if len(docs) != 2 {
			mt.Fatalf("ListAll() returned %d docs, want 2", len(docs))
		}
		if docs[1]["name"] != "UCSD" {
			mt.Errorf("docs[1][name] = %v, want UCSD", docs[1]["name"])
		}
	})

	mt.Run("CountMatching", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(3)}}))

		n, err := New(mt.Coll).CountMatching(ctx, bson.M{"method": "GET"})
		if err != nil {
			mt.Fatalf("CountMatching() error = %v", err)
		}
		if n != 3 {
			mt.Errorf("CountMatching() = %d, want 3", n)
		}
	})

	mt.Run("EstimatedCount", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(7)}))

		n, err := New(mt.Coll).EstimatedCount(ctx)
		if err != nil {
			mt.Fatalf("EstimatedCount() error = %v", err)
		}
		if n != 7 {
			mt.Errorf("EstimatedCount() = %d, want 7", n)
		}
	})

	mt.Run("FindAllError", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		if _, err := New(mt.Coll).FindAll(ctx); err == nil {
			mt.Error("FindAll() should return the server error")
		}
	})
}

func TestCollection_CloseWithoutOwnedClient(t *testing.T) {
	c := New(nil)
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
