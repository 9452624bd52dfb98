package domain

import "github.com/shopspring/decimal"

// Computer - агрегат цены заказа, собранный из компонентов-товаров.
//
// Price и Description отражают состояние на момент последнего Refresh.
// SetComponents меняет список, но не пересчитывает итог.
type Computer interface {
	Price() decimal.Decimal
	Description() string
	Components() []Product
	SetComponents(components []Product)
	Refresh()
}
