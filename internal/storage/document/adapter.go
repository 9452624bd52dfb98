package document

import (
	"context"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const defaultOpTimeout = 5 * time.Second

// Option настраивает Adapter.
type Option func(*options)

type options struct {
	timeout  time.Duration
	observer domain.StorageObserver
}

// WithTimeout ограничивает каждую операцию адаптера.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithObserver подключает наблюдателя за операциями.
func WithObserver(obs domain.StorageObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Adapter реализует domain.Repository со строковым ключом поверх коллекции.
type Adapter[V any] struct {
	kind     domain.Kind
	coll     Collection
	codec    Codec[V]
	timeout  time.Duration
	observer domain.StorageObserver
}

var _ domain.Repository[string, domain.Product] = (*Adapter[domain.Product])(nil)

// NewAdapter связывает коллекцию и кодек сущности.
func NewAdapter[V any](kind domain.Kind, coll Collection, codec Codec[V], opts ...Option) *Adapter[V] {
	o := options{timeout: defaultOpTimeout, observer: domain.NoopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Adapter[V]{
		kind:     kind,
		coll:     coll,
		codec:    codec,
		timeout:  o.timeout,
		observer: o.observer,
	}
}

// NewProductAdapter - адаптер каталога товаров.
func NewProductAdapter(coll Collection, opts ...Option) *Adapter[domain.Product] {
	return NewAdapter[domain.Product](domain.KindProduct, coll, ProductCodec{}, opts...)
}

// Collection возвращает нижележащую коллекцию.
func (a *Adapter[V]) Collection() Collection {
	return a.coll
}

// Create сохраняет сущность и возвращает её с id, присвоенным хранилищем.
func (a *Adapter[V]) Create(ctx context.Context, v V) (V, error) {
	start := time.Now()
	var zero V

	if err := domain.Prepare(&v); err != nil {
		return zero, a.finish(domain.OpCreate, start, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	id, err := a.coll.InsertOne(ctx, a.codec.ToDocument(v))
	if err != nil {
		return zero, a.finish(domain.OpCreate, start, err)
	}
	return a.codec.WithID(v, id), a.finish(domain.OpCreate, start, nil)
}

// ReadAll декодирует все документы коллекции в порядке хранилища.
func (a *Adapter[V]) ReadAll(ctx context.Context) ([]V, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	docs, err := a.coll.FindAll(ctx)
	if err != nil {
		return nil, a.finish(domain.OpReadAll, start, err)
	}

	out := make([]V, 0, len(docs))
	for _, doc := range docs {
		v, err := a.codec.FromDocument(doc)
		if err != nil {
			return nil, a.finish(domain.OpReadAll, start, err)
		}
		out = append(out, v)
	}
	return out, a.finish(domain.OpReadAll, start, nil)
}

// Read возвращает сущность по id.
func (a *Adapter[V]) Read(ctx context.Context, id string) (V, error) {
	start := time.Now()
	var zero V

	if id == "" {
		return zero, a.finish(domain.OpRead, start, ErrNoDocument)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	doc, err := a.coll.FindByID(ctx, id)
	if err != nil {
		return zero, a.finish(domain.OpRead, start, err)
	}
	v, err := a.codec.FromDocument(doc)
	if err != nil {
		return zero, a.finish(domain.OpRead, start, err)
	}
	return v, a.finish(domain.OpRead, start, nil)
}

// Update заменяет документ целиком. Возвращает число изменённых документов по данным хранилища.
func (a *Adapter[V]) Update(ctx context.Context, v V) (int64, error) {
	start := time.Now()

	if err := domain.Prepare(&v); err != nil {
		return 0, a.finish(domain.OpUpdate, start, err)
	}
	id := a.codec.ID(v)
	if id == "" {
		return 0, a.finish(domain.OpUpdate, start, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	n, err := a.coll.ReplaceByID(ctx, id, a.codec.ToDocument(v))
	if err != nil {
		return 0, a.finish(domain.OpUpdate, start, err)
	}
	return n, a.finish(domain.OpUpdate, start, nil)
}

// Delete удаляет документ по id. Отсутствующий id даёт 0.
func (a *Adapter[V]) Delete(ctx context.Context, id string) (int64, error) {
	start := time.Now()
	if id == "" {
		return 0, a.finish(domain.OpDelete, start, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	n, err := a.coll.DeleteByID(ctx, id)
	if err != nil {
		return 0, a.finish(domain.OpDelete, start, err)
	}
	return n, a.finish(domain.OpDelete, start, nil)
}

func (a *Adapter[V]) finish(op string, start time.Time, err error) error {
	err = mapError(a.kind, op, err)
	a.observer.ObserveOperation(a.kind, op, err, time.Since(start))
	return err
}

func mapError(kind domain.Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return err
	}

	var errKind domain.ErrorKind
	switch {
	case errors.Is(err, ErrNoDocument):
		errKind = domain.ErrorKindNotFound
	case errors.Is(err, ErrDuplicateID):
		errKind = domain.ErrorKindConflict
	case errors.Is(err, domain.ErrValidation):
		errKind = domain.ErrorKindValidation
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		errKind = domain.ErrorKindStoreUnavailable
	default:
		errKind = domain.ErrorKindInternal
	}
	return domain.NewPersistenceError(errKind, kind, op, err)
}
