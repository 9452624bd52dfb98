package document_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

func newProducts() *document.Adapter[domain.Product] {
	return document.NewProductAdapter(memory.NewCollection("products"))
}

func TestProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	products := newProducts()

	created, err := products.Create(ctx, domain.Product{
		Type:     "cpu",
		Name:     "Ryzen 7",
		Price:    decimal.RequireFromString("329.99"),
		Quantity: 4,
		Img:      "ryzen.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := products.Read(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "cpu", got.Type)
	require.Equal(t, "Ryzen 7", got.Name)
	require.True(t, got.Price.Equal(decimal.RequireFromString("329.99")))
	require.Equal(t, 4, got.Quantity)
	require.Equal(t, "ryzen.png", got.Img)
}

func TestProductReadMissing(t *testing.T) {
	products := newProducts()

	_, err := products.Read(context.Background(), "absent")
	require.True(t, domain.IsNotFound(err))

	_, err = products.Read(context.Background(), "")
	require.True(t, domain.IsNotFound(err))
}

func TestProductCreateDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	products := newProducts()

	p := domain.Product{ID: "sku-1", Name: "ram", Price: decimal.NewFromInt(50)}
	_, err := products.Create(ctx, p)
	require.NoError(t, err)

	_, err = products.Create(ctx, p)
	require.ErrorIs(t, err, domain.ErrConflict)
	require.ErrorIs(t, err, document.ErrDuplicateID)
}

func TestProductValidation(t *testing.T) {
	_, err := newProducts().Create(context.Background(), domain.Product{Name: "gpu", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrProductPriceNegative)
}

func TestProductUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	products := newProducts()

	created, err := products.Create(ctx, domain.Product{Name: "ssd", Price: decimal.NewFromInt(80)})
	require.NoError(t, err)

	created.Price = decimal.NewFromInt(75)
	n, err := products.Update(ctx, created)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// повторная запись тех же значений не меняет состояние
	n, err = products.Update(ctx, created)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := products.Read(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, got.Price.Equal(decimal.NewFromInt(75)))

	n, err = products.Update(ctx, domain.Product{ID: "ghost", Name: "x"})
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = products.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = products.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProductReadAll(t *testing.T) {
	ctx := context.Background()
	products := newProducts()

	for _, name := range []string{"cpu", "ram", "ssd"} {
		_, err := products.Create(ctx, domain.Product{Name: name})
		require.NoError(t, err)
	}

	all, err := products.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "cpu", all[0].Name)
}

// brokenCollection имитирует недоступное хранилище.
type brokenCollection struct {
	document.Collection
	err error
}

func (b brokenCollection) InsertOne(context.Context, document.Document) (string, error) {
	return "", b.err
}

func (b brokenCollection) FindByID(context.Context, string) (document.Document, error) {
	return nil, b.err
}

func (b brokenCollection) FindAll(context.Context) ([]document.Document, error) {
	return nil, b.err
}

func TestBackendFailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	cause := errors.Join(document.ErrUnavailable, errors.New("dial tcp: connection refused"))
	products := document.NewProductAdapter(brokenCollection{err: cause}, document.WithTimeout(time.Second))

	_, err := products.Create(ctx, domain.Product{Name: "cpu"})
	require.True(t, domain.IsStoreUnavailable(err))

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, domain.OpCreate, perr.Op)
	require.Equal(t, domain.KindProduct, perr.Entity)
	require.ErrorContains(t, err, "connection refused")

	_, err = products.ReadAll(ctx)
	require.True(t, domain.IsStoreUnavailable(err))

	products = document.NewProductAdapter(brokenCollection{err: fmt.Errorf("decode: %w", errors.New("bad bson"))})
	_, err = products.Read(ctx, "x")
	require.Equal(t, domain.ErrorKindInternal, domain.KindOf(err))
}

func TestProductDeleteTwice(t *testing.T) {
	ctx := context.Background()
	products := newProducts()

	created, err := products.Create(ctx, domain.Product{Name: "psu", Price: decimal.NewFromInt(60)})
	require.NoError(t, err)

	n, err := products.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = products.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}
