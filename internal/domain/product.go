package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Product - товар каталога, хранится в документном хранилище.
type Product struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Img      string          `json:"img,omitempty"`
}

// Normalize убирает пробелы по краям строковых полей.
func (p *Product) Normalize() {
	p.Type = strings.TrimSpace(p.Type)
	p.Name = strings.TrimSpace(p.Name)
}

// Validate проверяет инварианты товара.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrProductQuantityNegative)
	}
	return errors.Join(errs...)
}
