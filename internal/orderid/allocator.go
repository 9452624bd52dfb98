// Package orderid выдаёт уникальные идентификаторы заказов из конечного пула.
package orderid

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// DefaultCapacity - размер пула по умолчанию.
const DefaultCapacity = 10000

// Observer получает размер пула после каждой выдачи.
type Observer interface {
	PoolSize(remaining int)
}

// Option настраивает Allocator.
type Option func(*options)

type options struct {
	rnd      *rand.Rand
	exclude  map[int]struct{}
	observer Observer
}

// WithRand задаёт источник случайности, например с фиксированным seed в тестах.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rnd = r
	}
}

// WithExclude исключает уже занятые идентификаторы из пула.
func WithExclude(ids ...int) Option {
	return func(o *options) {
		for _, id := range ids {
			o.exclude[id] = struct{}{}
		}
	}
}

// WithObserver подключает наблюдателя за остатком пула.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Allocator выдаёт идентификаторы 1..capacity в случайном порядке без повторов.
// Выданные значения в пул не возвращаются.
type Allocator struct {
	mu       sync.Mutex
	pool     []int
	capacity int
	observer Observer
}

// New строит пул из случайной перестановки 1..capacity.
func New(capacity int, opts ...Option) (*Allocator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("order id pool capacity must be positive, got %d", capacity)
	}

	o := options{exclude: make(map[int]struct{})}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	pool := make([]int, 0, capacity)
	for _, n := range o.rnd.Perm(capacity) {
		id := n + 1
		if _, skip := o.exclude[id]; skip {
			continue
		}
		pool = append(pool, id)
	}

	a := &Allocator{pool: pool, capacity: capacity, observer: o.observer}
	a.notify(len(pool))
	return a, nil
}

// Allocate выдаёт следующий идентификатор. Пустой пул даёт ErrPoolExhausted.
func (a *Allocator) Allocate() (int, error) {
	a.mu.Lock()
	if len(a.pool) == 0 {
		a.mu.Unlock()
		return 0, fmt.Errorf("allocate from pool of %d: %w", a.capacity, domain.ErrPoolExhausted)
	}
	last := len(a.pool) - 1
	id := a.pool[last]
	a.pool = a.pool[:last]
	remaining := len(a.pool)
	a.mu.Unlock()

	a.notify(remaining)
	return id, nil
}

// Next выдаёт идентификатор в строковом виде, как он хранится в заказе.
func (a *Allocator) Next() (string, error) {
	id, err := a.Allocate()
	if err != nil {
		return "", err
	}
	return strconv.Itoa(id), nil
}

// Remaining возвращает число невыданных идентификаторов.
func (a *Allocator) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pool)
}

// Capacity возвращает размер исходного пула.
func (a *Allocator) Capacity() int {
	return a.capacity
}

func (a *Allocator) notify(remaining int) {
	if a.observer != nil {
		a.observer.PoolSize(remaining)
	}
}
