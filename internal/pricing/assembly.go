// Package pricing собирает цену и описание заказа из компонентов.
package pricing

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const descriptionSeparator = ", "

// Option настраивает Assembly.
type Option func(*Assembly)

// WithAutoRefresh включает пересчёт прямо в SetComponents.
// Отступление от двухшагового контракта: итог никогда не бывает устаревшим.
func WithAutoRefresh() Option {
	return func(a *Assembly) {
		a.autoRefresh = true
	}
}

// Assembly - компьютер как сумма компонентов-товаров.
// Цена - сумма цен, описание - имена через запятую.
type Assembly struct {
	mu          sync.RWMutex
	components  []domain.Product
	price       decimal.Decimal
	description string
	autoRefresh bool
}

var _ domain.Computer = (*Assembly)(nil)

// NewAssembly фиксирует цену и описание на момент создания.
func NewAssembly(components []domain.Product, opts ...Option) *Assembly {
	a := &Assembly{components: slices.Clone(components)}
	for _, opt := range opts {
		opt(a)
	}
	a.recompute()
	return a
}

// Price возвращает цену на момент последнего пересчёта.
func (a *Assembly) Price() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.price
}

// Description возвращает описание на момент последнего пересчёта.
func (a *Assembly) Description() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.description
}

// Components возвращает копию текущего списка компонентов.
func (a *Assembly) Components() []domain.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.components)
}

// SetComponents заменяет список компонентов.
func (a *Assembly) SetComponents(components []domain.Product) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.components = slices.Clone(components)
	if a.autoRefresh {
		a.recompute()
	}
}

// Refresh пересчитывает цену и описание по текущим компонентам.
func (a *Assembly) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recompute()
}

// AutoRefresh сообщает, включён ли немедленный пересчёт.
func (a *Assembly) AutoRefresh() bool {
	return a.autoRefresh
}

// recompute вызывается под блокировкой на запись.
func (a *Assembly) recompute() {
	total := decimal.Zero
	names := make([]string, 0, len(a.components))
	for _, p := range a.components {
		total = total.Add(p.Price)
		names = append(names, p.Name)
	}
	a.price = total
	a.description = strings.Join(names, descriptionSeparator)
}
