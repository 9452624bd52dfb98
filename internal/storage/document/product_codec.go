package document

import (
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// ProductCodec хранит товар как плоский документ.
type ProductCodec struct{}

var _ Codec[domain.Product] = ProductCodec{}

// ToDocument переводит товар в документ. Цена хранится строкой без потери точности.
func (ProductCodec) ToDocument(p domain.Product) Document {
	doc := Document{
		"type":     p.Type,
		"name":     p.Name,
		"price":    p.Price.String(),
		"quantity": int64(p.Quantity),
		"img":      p.Img,
	}
	if p.ID != "" {
		doc[IDField] = p.ID
	}
	return doc
}

// FromDocument собирает товар из документа.
func (ProductCodec) FromDocument(doc Document) (domain.Product, error) {
	var (
		p    domain.Product
		errs []error
		err  error
	)
	if p.ID, err = doc.String(IDField); err != nil {
		errs = append(errs, err)
	}
	if p.Type, err = doc.String("type"); err != nil {
		errs = append(errs, err)
	}
	if p.Name, err = doc.String("name"); err != nil {
		errs = append(errs, err)
	}
	if p.Img, err = doc.String("img"); err != nil {
		errs = append(errs, err)
	}
	if p.Price, err = doc.Decimal("price"); err != nil {
		errs = append(errs, err)
	}
	quantity, err := doc.Int("quantity")
	if err != nil {
		errs = append(errs, err)
	}
	p.Quantity = int(quantity)

	if err := errors.Join(errs...); err != nil {
		return domain.Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

// ID возвращает ключ товара.
func (ProductCodec) ID(p domain.Product) string {
	return p.ID
}

// WithID проставляет ключ товара.
func (ProductCodec) WithID(p domain.Product, id string) domain.Product {
	p.ID = id
	return p
}
