package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

func TestNewDependencies_SQLiteAndMemory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	deps, err := NewDependencies(ctx, cfg, log.WithField("test", "dependencies"), WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, deps.Close(ctx)) })

	require.NotNil(t, deps.Metrics)
	require.NotNil(t, deps.Storage)
	require.NotNil(t, deps.Orders)
	require.Nil(t, deps.Producer)
	require.Equal(t, cfg.OrderIDCapacity, deps.IDs.Remaining())

	products, err := deps.Storage.Products(ctx)
	require.NoError(t, err)
	p, err := products.Create(ctx, domain.Product{Name: "cpu", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)

	order, err := deps.Orders.Create(ctx, []string{p.ID})
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.NewFromInt(100)))
	require.Equal(t, cfg.OrderIDCapacity-1, deps.IDs.Remaining())
}

func TestNewDependencies_ExcludesPersistedIDs(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	coll := memory.NewCollection("products")

	first, err := NewDependencies(ctx, cfg, nil,
		WithRegisterer(prometheus.NewRegistry()),
		WithStorageOptions(storage.WithCollection(coll)),
	)
	require.NoError(t, err)

	products, err := first.Storage.Products(ctx)
	require.NoError(t, err)
	p, err := products.Create(ctx, domain.Product{Name: "ram", Price: decimal.NewFromInt(40)})
	require.NoError(t, err)
	created, err := first.Orders.Create(ctx, []string{p.ID})
	require.NoError(t, err)

	// вторая копия держит общую память SQLite открытой
	second, err := NewDependencies(ctx, cfg, nil,
		WithRegisterer(prometheus.NewRegistry()),
		WithStorageOptions(storage.WithCollection(coll)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, second.Close(ctx)) })
	require.NoError(t, first.Close(ctx))

	require.Equal(t, cfg.OrderIDCapacity-1, second.IDs.Remaining())
	for second.IDs.Remaining() > 0 {
		id, err := second.IDs.Next()
		require.NoError(t, err)
		require.NotEqual(t, created.ID, id)
	}
}

func TestNewDependencies_OpenFailureCleansUp(t *testing.T) {
	cfg := testConfig(t)
	cfg.RelationalDriver = "oracle"

	deps, err := NewDependencies(context.Background(), cfg, nil, WithRegisterer(prometheus.NewRegistry()))
	require.Error(t, err)
	require.Nil(t, deps)
}
