package relational

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const (
	opFindByName = "findByName"
	opFindByCity = "findByCity"
)

// CustomerEngine добавляет к движку клиентов поиск по имени и городу.
type CustomerEngine struct {
	*Engine[int64, domain.Customer]
}

// NewCustomerEngine создаёт движок клиентов.
func NewCustomerEngine(session *Session, opts ...EngineOption) (*CustomerEngine, error) {
	engine, err := NewEngine(session, CustomerDescriptor(), opts...)
	if err != nil {
		return nil, err
	}
	return &CustomerEngine{Engine: engine}, nil
}

// FindByName возвращает первого клиента с таким именем.
func (e *CustomerEngine) FindByName(ctx context.Context, name string) (domain.Customer, error) {
	start := time.Now()
	var c domain.Customer

	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		return e.scoped(tx).
			Where("customers.name = ?", name).
			Order(e.desc.keyColumn()).
			Take(&c).Error
	})
	if err != nil {
		return domain.Customer{}, e.finish(opFindByName, start, err)
	}
	return c, e.finish(opFindByName, start, nil)
}

// FindByCity возвращает клиентов, чей адрес в указанном городе.
func (e *CustomerEngine) FindByCity(ctx context.Context, city string) ([]domain.Customer, error) {
	start := time.Now()
	var out []domain.Customer

	err := e.session.InTx(ctx, func(tx *gorm.DB) error {
		return e.scoped(tx).
			Joins("JOIN addresses ON addresses.customer_id = customers.id").
			Where("addresses.city_name = ?", city).
			Order(e.desc.keyColumn()).
			Find(&out).Error
	})
	if err != nil {
		return nil, e.finish(opFindByCity, start, err)
	}
	if out == nil {
		out = []domain.Customer{}
	}
	return out, e.finish(opFindByCity, start, nil)
}
