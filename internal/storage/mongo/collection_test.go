package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
)

func TestIDConversion(t *testing.T) {
	oid := primitive.NewObjectID()

	require.Equal(t, oid, idValue(oid.Hex()))
	require.Equal(t, "sku-1", idValue("sku-1"))
	require.Equal(t, oid.Hex(), idString(oid))
	require.Equal(t, "sku-1", idString("sku-1"))
}

func TestBSONConversion(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := document.Document{document.IDField: oid.Hex(), "name": "cpu"}

	withID := toBSON(doc, true)
	require.Equal(t, oid, withID["_id"])

	withoutID := toBSON(doc, false)
	_, ok := withoutID["_id"]
	require.False(t, ok)

	back := fromBSON(bson.M{"_id": oid, "name": "cpu", "quantity": int32(2)})
	require.Equal(t, oid.Hex(), back.ID())
	require.Equal(t, int32(2), back["quantity"])
}

func TestMapError(t *testing.T) {
	require.ErrorIs(t, mapError(mongo.ErrNoDocuments), document.ErrNoDocument)
	require.ErrorIs(t, mapError(fmt.Errorf("find: %w", context.DeadlineExceeded)), document.ErrUnavailable)
	require.ErrorIs(t, mapError(mongo.ErrClientDisconnected), document.ErrUnavailable)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, mapError(dup), document.ErrDuplicateID)

	other := errors.New("boom")
	require.Equal(t, other, mapError(other))
}

func TestCollectionIntegration(t *testing.T) {
	uri := strings.TrimSpace(os.Getenv("ECOM_MONGO_TEST_URI"))
	if uri == "" {
		t.Skipf("mongo is not available for integration tests: ECOM_MONGO_TEST_URI is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll, err := Open(ctx, Config{URI: uri, Database: "ecom_test", Collection: fmt.Sprintf("products_%d", time.Now().UnixNano())})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = coll.coll.Drop(context.Background())
		_ = coll.Close(context.Background())
	})

	id, err := coll.InsertOne(ctx, document.Document{"name": "cpu", "quantity": int64(2)})
	require.NoError(t, err)

	doc, err := coll.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, doc.ID())

	_, err = coll.InsertOne(ctx, document.Document{document.IDField: id})
	require.ErrorIs(t, err, document.ErrDuplicateID)

	n, err := coll.ReplaceByID(ctx, id, document.Document{"name": "gpu", "quantity": int64(2)})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	all, err := coll.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	n, err = coll.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = coll.FindByID(ctx, id)
	require.ErrorIs(t, err, document.ErrNoDocument)
}
