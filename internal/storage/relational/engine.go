package relational

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// EngineOption настраивает Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	observer domain.StorageObserver
}

// WithObserver подключает наблюдателя за операциями.
func WithObserver(o domain.StorageObserver) EngineOption {
	return func(opts *engineOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// Engine реализует domain.Repository поверх одной таблицы.
type Engine[K comparable, V any] struct {
	session  *Session
	desc     Descriptor[K, V]
	observer domain.StorageObserver
}

var _ domain.Repository[int64, domain.Address] = (*Engine[int64, domain.Address])(nil)

// NewEngine сверяет дескриптор со схемой модели и создаёт движок.
func NewEngine[K comparable, V any](session *Session, desc Descriptor[K, V], opts ...EngineOption) (*Engine[K, V], error) {
	if session == nil {
		return nil, fmt.Errorf("engine %s: session is required", desc.Kind)
	}
	if err := desc.verify(session.DB()); err != nil {
		return nil, err
	}

	o := engineOptions{observer: domain.NoopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[K, V]{session: session, desc: desc, observer: o.observer}, nil
}

// Kind возвращает тип сущности движка.
func (e *Engine[K, V]) Kind() domain.Kind {
	return e.desc.Kind
}

// Create сохраняет сущность и возвращает её с присвоенным ключом.
func (e *Engine[K, V]) Create(ctx context.Context, v V) (V, error) {
	start := time.Now()
	var zero V

	if err := domain.Prepare(&v); err != nil {
		return zero, e.finish(domain.OpCreate, start, err)
	}
	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&v).Error
	})
	if err != nil {
		return zero, e.finish(domain.OpCreate, start, err)
	}
	return v, e.finish(domain.OpCreate, start, nil)
}

// ReadAll возвращает все записи таблицы по возрастанию ключа.
func (e *Engine[K, V]) ReadAll(ctx context.Context) ([]V, error) {
	start := time.Now()
	var out []V

	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		return e.scoped(tx).Order(e.desc.keyColumn()).Find(&out).Error
	})
	if err != nil {
		return nil, e.finish(domain.OpReadAll, start, err)
	}
	if out == nil {
		out = []V{}
	}
	return out, e.finish(domain.OpReadAll, start, nil)
}

// Read возвращает запись по ключу.
func (e *Engine[K, V]) Read(ctx context.Context, k K) (V, error) {
	start := time.Now()
	var v V

	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		return e.scoped(tx).Where(e.keyEq(k)).Take(&v).Error
	})
	if err != nil {
		var zero V
		return zero, e.finish(domain.OpRead, start, err)
	}
	return v, e.finish(domain.OpRead, start, nil)
}

// Update полностью заменяет запись вместе со связями. Отсутствующий ключ даёт 0.
func (e *Engine[K, V]) Update(ctx context.Context, v V) (int64, error) {
	start := time.Now()

	if err := domain.Prepare(&v); err != nil {
		return 0, e.finish(domain.OpUpdate, start, err)
	}
	key := e.desc.Key(&v)
	var zero K
	if key == zero {
		return 0, e.finish(domain.OpUpdate, start, nil)
	}

	var affected int64
	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Table(e.desc.Table).Where(e.keyEq(key)).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return nil
		}
		if e.desc.BeforeReplace != nil {
			if err := e.desc.BeforeReplace(tx, &v); err != nil {
				return err
			}
		}
		res := tx.Session(&gorm.Session{FullSaveAssociations: true}).
			Model(&v).
			Select("*").
			Updates(&v)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, e.finish(domain.OpUpdate, start, err)
	}
	return affected, e.finish(domain.OpUpdate, start, nil)
}

// Delete удаляет запись по ключу, при Cascade вместе со связями.
func (e *Engine[K, V]) Delete(ctx context.Context, k K) (int64, error) {
	start := time.Now()
	var zero K
	if k == zero {
		return 0, e.finish(domain.OpDelete, start, nil)
	}

	placeholder := new(V)
	e.desc.SetKey(placeholder, k)

	var affected int64
	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		if e.desc.Cascade {
			tx = tx.Select(clause.Associations)
		}
		res := tx.Delete(placeholder)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, e.finish(domain.OpDelete, start, err)
	}
	return affected, e.finish(domain.OpDelete, start, nil)
}

// scoped строит запрос чтения по дескриптору: FROM <table>, столбцы и связи.
func (e *Engine[K, V]) scoped(tx *gorm.DB) *gorm.DB {
	q := tx.Table(e.desc.Table)
	if len(e.desc.Columns) > 0 {
		q = q.Select(e.desc.qualifiedColumns())
	}
	for _, preload := range e.desc.Preloads {
		q = q.Preload(preload)
	}
	return q
}

func (e *Engine[K, V]) keyEq(k K) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: e.desc.Table, Name: e.desc.KeyColumn}, Value: k}
}

func (e *Engine[K, V]) finish(op string, start time.Time, err error) error {
	err = mapError(e.desc.Kind, op, err)
	e.observer.ObserveOperation(e.desc.Kind, op, err, time.Since(start))
	return err
}
