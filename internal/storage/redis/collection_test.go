package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
)

func TestDecodeKeepsNumbers(t *testing.T) {
	doc, err := decode([]byte(`{"_id":"p1","quantity":12345678901,"price":"9.99"}`))
	require.NoError(t, err)
	require.Equal(t, "p1", doc.ID())

	q, err := doc.Int("quantity")
	require.NoError(t, err)
	require.EqualValues(t, 12345678901, q)

	_, err = decode([]byte(`{`))
	require.Error(t, err)
}

func TestMapError(t *testing.T) {
	require.ErrorIs(t, mapError(goredis.Nil), document.ErrNoDocument)
	require.ErrorIs(t, mapError(goredis.ErrClosed), document.ErrUnavailable)
	require.ErrorIs(t, mapError(fmt.Errorf("get: %w", context.DeadlineExceeded)), document.ErrUnavailable)
	require.ErrorIs(t, mapError(document.ErrDuplicateID), document.ErrDuplicateID)

	other := errors.New("WRONGTYPE")
	require.Equal(t, other, mapError(other))
}

func TestKeys(t *testing.T) {
	c := New(nil, "products")
	require.Equal(t, "products:doc:p1", c.docKey("p1"))
	require.Equal(t, "products:ids", c.indexKey())
	require.Equal(t, "products", c.Name())
}

func TestCollectionIntegration(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("ECOM_REDIS_TEST_ADDR"))
	if addr == "" {
		t.Skipf("redis is not available for integration tests: ECOM_REDIS_TEST_ADDR is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("ecom_test_%d", time.Now().UnixNano())
	coll, err := Open(ctx, Config{Addr: addr, Collection: name})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = coll.Close(context.Background())
	})

	id, err := coll.InsertOne(ctx, document.Document{"name": "cpu", "quantity": 2})
	require.NoError(t, err)

	_, err = coll.InsertOne(ctx, document.Document{document.IDField: id})
	require.ErrorIs(t, err, document.ErrDuplicateID)

	doc, err := coll.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "cpu", doc["name"])

	n, err := coll.ReplaceByID(ctx, id, document.Document{"name": "gpu", "quantity": 2})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = coll.ReplaceByID(ctx, id, document.Document{"name": "gpu", "quantity": 2})
	require.NoError(t, err)
	require.Zero(t, n)

	all, err := coll.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	n, err = coll.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = coll.DeleteByID(ctx, id)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = coll.FindByID(ctx, id)
	require.ErrorIs(t, err, document.ErrNoDocument)
}
