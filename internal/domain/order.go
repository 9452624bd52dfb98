package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order - заказ собранного компьютера.
//
// Total и Description фиксируются на момент последнего Refresh.
// Products всегда совпадает с текущим списком компонентов.
type Order struct {
	ID          string                       `gorm:"primaryKey;size:32" json:"id"`
	Date        time.Time                    `gorm:"column:ordered_at;not null" json:"date"`
	Products    datatypes.JSONSlice[Product] `gorm:"column:products" json:"products"`
	Description string                       `gorm:"column:description;size:1024" json:"description"`
	Total       decimal.Decimal              `gorm:"column:total;type:numeric(14,2);not null" json:"total"`

	computer Computer
}

// TableName фиксирует имя таблицы.
func (Order) TableName() string { return "orders" }

// NewOrder фиксирует снимок агрегата в заказе. Без агрегата - ErrComputerDetached.
func NewOrder(id string, computer Computer, at time.Time) (Order, error) {
	o := Order{ID: id, computer: computer}
	if err := o.snapshot(at); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Computer возвращает привязанный агрегат или nil после чтения из хранилища.
func (o *Order) Computer() Computer {
	return o.computer
}

// Attach привязывает агрегат, не трогая сохранённые итог и описание.
func (o *Order) Attach(computer Computer) {
	o.computer = computer
}

// SetProducts заменяет компоненты. Итог и описание остаются прежними до Refresh.
func (o *Order) SetProducts(products []Product) {
	o.Products = slices.Clone(products)
	if o.computer != nil {
		o.computer.SetComponents(products)
	}
}

// Refresh пересчитывает агрегат и переносит его значения в заказ.
func (o *Order) Refresh(at time.Time) error {
	if o.computer == nil {
		return ErrComputerDetached
	}
	o.computer.Refresh()
	return o.snapshot(at)
}

// Stale сообщает, что итог заказа расходится с агрегатом.
func (o *Order) Stale() bool {
	if o.computer == nil {
		return false
	}
	return !o.computer.Price().Equal(o.Total) || o.computer.Description() != o.Description
}

// ProductIDs возвращает идентификаторы компонентов.
func (o Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// Validate проверяет инварианты заказа.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrOrderIDRequired
	}
	if o.Total.IsNegative() {
		return ErrOrderTotalNegative
	}
	return nil
}

func (o Order) String() string {
	return fmt.Sprintf("OrderID@%s: %s $%s", o.ID, o.Description, o.Total.StringFixed(2))
}

func (o *Order) snapshot(at time.Time) error {
	if o.computer == nil {
		return ErrComputerDetached
	}
	o.Date = at
	o.Products = o.computer.Components()
	o.Description = o.computer.Description()
	o.Total = o.computer.Price()
	return nil
}
