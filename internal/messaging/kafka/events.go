package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated  EventType = "order.created"
	EventTypeOrderUpdated  EventType = "order.updated"
	EventTypeOrderDeleted  EventType = "order.deleted"
	EventTypeOrderCanceled EventType = "order.canceled"

	// Catalog события
	EventTypeProductImported EventType = "product.imported"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "ecom.order.events"
	TopicCatalogEvents = "ecom.catalog.events"
)

// HeaderEventType дублирует тип события в заголовке для фильтрации без разбора тела.
const HeaderEventType = "x-event-type"

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id"`
	Description string                 `json:"description,omitempty"`
	Total       string                 `json:"total,omitempty"`
	ProductIDs  []string               `json:"product_ids,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ProductEvent представляет событие каталога
type ProductEvent struct {
	EventType   EventType `json:"event_type"`
	ProductID   string    `json:"product_id"`
	ProductType string    `json:"type,omitempty"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderEvent снимает с заказа данные для события.
func NewOrderEvent(eventType EventType, order domain.Order, metadata map[string]interface{}) OrderEvent {
	return OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		Description: order.Description,
		Total:       order.Total.StringFixed(2),
		ProductIDs:  order.ProductIDs(),
		Timestamp:   time.Now().UTC(),
		Metadata:    metadata,
	}
}

// NewProductEvent создаёт событие каталога.
func NewProductEvent(eventType EventType, p domain.Product) ProductEvent {
	return ProductEvent{
		EventType:   eventType,
		ProductID:   p.ID,
		ProductType: p.Type,
		Name:        p.Name,
		Price:       p.Price.String(),
		Timestamp:   time.Now().UTC(),
	}
}
