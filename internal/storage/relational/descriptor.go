package relational

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Descriptor явно описывает, как сущность V с ключом K лежит в таблице.
// Сверяется со схемой gorm один раз при создании движка.
type Descriptor[K comparable, V any] struct {
	Kind      domain.Kind
	Table     string
	KeyColumn string
	// Columns - столбцы, которые читает движок.
	Columns []string
	// Preloads - связи, подгружаемые при чтении.
	Preloads []string
	// Cascade удаляет связанные записи вместе с сущностью.
	Cascade bool
	Key     func(*V) K
	SetKey  func(*V, K)
	// BeforeReplace вызывается в транзакции Update перед полной заменой.
	BeforeReplace func(tx *gorm.DB, v *V) error
}

func (d Descriptor[K, V]) verify(db *gorm.DB) error {
	if d.Key == nil || d.SetKey == nil {
		return fmt.Errorf("descriptor %s: key accessors are required", d.Kind)
	}

	s, err := schema.Parse(new(V), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return fmt.Errorf("descriptor %s: parse model: %w", d.Kind, err)
	}
	if s.Table != d.Table {
		return fmt.Errorf("descriptor %s: table %q does not match model table %q", d.Kind, d.Table, s.Table)
	}

	key := s.LookUpField(d.KeyColumn)
	if key == nil || !key.PrimaryKey {
		return fmt.Errorf("descriptor %s: %q is not a primary key of %s", d.Kind, d.KeyColumn, s.Table)
	}
	for _, column := range d.Columns {
		if s.LookUpField(column) == nil {
			return fmt.Errorf("descriptor %s: column %q not found in %s", d.Kind, column, s.Table)
		}
	}
	for _, preload := range d.Preloads {
		if _, ok := s.Relationships.Relations[preload]; !ok {
			return fmt.Errorf("descriptor %s: relation %q not found in %s", d.Kind, preload, s.Name)
		}
	}
	return nil
}

func (d Descriptor[K, V]) qualifiedColumns() []string {
	out := make([]string, 0, len(d.Columns))
	for _, column := range d.Columns {
		out = append(out, d.Table+"."+column)
	}
	return out
}

func (d Descriptor[K, V]) keyColumn() string {
	return d.Table + "." + d.KeyColumn
}

// CustomerDescriptor описывает клиентов с каскадным адресом.
func CustomerDescriptor() Descriptor[int64, domain.Customer] {
	return Descriptor[int64, domain.Customer]{
		Kind:          domain.KindCustomer,
		Table:         "customers",
		KeyColumn:     "id",
		Columns:       []string{"id", "name"},
		Preloads:      []string{"Address"},
		Cascade:       true,
		Key:           func(c *domain.Customer) int64 { return c.ID },
		SetKey:        func(c *domain.Customer, id int64) { c.ID = id },
		BeforeReplace: adoptOwnedAddress,
	}
}

// adoptOwnedAddress переносит id уже сохранённого адреса в новый адрес без id,
// чтобы замена клиента перезаписала строку адреса, а не вставила вторую.
func adoptOwnedAddress(tx *gorm.DB, c *domain.Customer) error {
	if c.Address == nil || c.Address.ID != 0 {
		return nil
	}
	var ids []int64
	err := tx.Model(&domain.Address{}).
		Where("customer_id = ?", c.ID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		c.Address.ID = ids[0]
	}
	c.Address.CustomerID = c.ID
	return nil
}

// AddressDescriptor описывает адреса.
func AddressDescriptor() Descriptor[int64, domain.Address] {
	return Descriptor[int64, domain.Address]{
		Kind:      domain.KindAddress,
		Table:     "addresses",
		KeyColumn: "id",
		Columns:   []string{"id", "customer_id", "street", "city_name", "contacts"},
		Key:       func(a *domain.Address) int64 { return a.ID },
		SetKey:    func(a *domain.Address, id int64) { a.ID = id },
	}
}

// OrderDescriptor описывает заказы.
func OrderDescriptor() Descriptor[string, domain.Order] {
	return Descriptor[string, domain.Order]{
		Kind:      domain.KindOrder,
		Table:     "orders",
		KeyColumn: "id",
		Columns:   []string{"id", "ordered_at", "products", "description", "total"},
		Key:       func(o *domain.Order) string { return o.ID },
		SetKey:    func(o *domain.Order, id string) { o.ID = id },
	}
}
