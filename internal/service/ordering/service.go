// Package ordering собирает заказы из товаров каталога и ведёт их жизненный цикл.
package ordering

import (
	"context"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/pricing"
)

// IDSource выдаёт уникальные идентификаторы заказов.
type IDSource interface {
	Allocate() (int, error)
}

// EventPublisher публикует события заказов.
type EventPublisher interface {
	PublishOrderEvent(event kafka.OrderEvent) error
}

// Metrics учитывает созданные заказы.
type Metrics interface {
	RecordOrderCreated()
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher подключает публикацию событий.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMetrics подключает метрики заказов.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAutoRefresh собирает заказы на агрегатах с немедленным пересчётом.
func WithAutoRefresh() Option {
	return func(s *Service) {
		s.assemblyOpts = append(s.assemblyOpts, pricing.WithAutoRefresh())
	}
}

// Service создаёт, читает, обновляет и отменяет заказы.
type Service struct {
	orders       domain.Repository[string, domain.Order]
	products     domain.Repository[string, domain.Product]
	ids          IDSource
	publisher    EventPublisher
	metrics      Metrics
	logger       *log.Entry
	now          func() time.Time
	assemblyOpts []pricing.Option
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.Repository[string, domain.Order],
	products domain.Repository[string, domain.Product],
	ids IDSource,
	logger *log.Entry,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "ordering")
	}
	s := &Service{
		orders:   orders,
		products: products,
		ids:      ids,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create читает товары по id, собирает из них компьютер и сохраняет заказ.
func (s *Service) Create(ctx context.Context, productIDs []string) (domain.Order, error) {
	if len(productIDs) == 0 {
		return domain.Order{}, fmt.Errorf("create order: %w: at least one product is required", domain.ErrValidation)
	}

	components := make([]domain.Product, 0, len(productIDs))
	for _, id := range productIDs {
		p, err := s.products.Read(ctx, id)
		if err != nil {
			return domain.Order{}, fmt.Errorf("create order: product %s: %w", id, err)
		}
		components = append(components, p)
	}
	return s.CreateFromComputer(ctx, pricing.NewAssembly(components, s.assemblyOpts...))
}

// CreateFromComputer выделяет id и сохраняет снимок агрегата как новый заказ.
func (s *Service) CreateFromComputer(ctx context.Context, computer domain.Computer) (domain.Order, error) {
	if computer == nil {
		return domain.Order{}, fmt.Errorf("create order: %w", domain.ErrComputerDetached)
	}
	n, err := s.ids.Allocate()
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	order, err := domain.NewOrder(strconv.Itoa(n), computer, s.now())
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order %s: %w", order.ID, err)
	}
	created.Attach(computer)

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"total":    created.Total.StringFixed(2),
	}).Info("order created")
	s.publish(kafka.EventTypeOrderCreated, created)
	return created, nil
}

// Get возвращает заказ с агрегатом, собранным из сохранённых компонентов.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.Read(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	s.attach(&order)
	return order, nil
}

// List возвращает все заказы с привязанными агрегатами.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.attach(&orders[i])
	}
	return orders, nil
}

// Update пересчитывает заказ и полностью заменяет сохранённую версию.
// Возвращает false, если заказа нет в хранилище.
func (s *Service) Update(ctx context.Context, order *domain.Order) (bool, error) {
	if order.Computer() == nil {
		s.attach(order)
	}
	if err := order.Refresh(s.now()); err != nil {
		return false, fmt.Errorf("refresh order %s: %w", order.ID, err)
	}

	n, err := s.orders.Update(ctx, *order)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	s.publish(kafka.EventTypeOrderUpdated, *order)
	return true, nil
}

// Delete удаляет заказ. Отсутствующий заказ даёт 0.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	return s.remove(ctx, id, kafka.EventTypeOrderDeleted)
}

// Cancel удаляет заказ и публикует order.canceled.
func (s *Service) Cancel(ctx context.Context, id string) (int64, error) {
	return s.remove(ctx, id, kafka.EventTypeOrderCanceled)
}

func (s *Service) remove(ctx context.Context, id string, eventType kafka.EventType) (int64, error) {
	order, err := s.orders.Read(ctx, id)
	if domain.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n, err := s.orders.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithFields(log.Fields{
			"order_id": id,
			"event":    eventType,
		}).Info("order removed")
		s.publish(eventType, order)
	}
	return n, nil
}

func (s *Service) attach(order *domain.Order) {
	order.Attach(pricing.NewAssembly(order.Products, s.assemblyOpts...))
}

// publish отправляет событие, если producer настроен. Ошибка только логируется.
func (s *Service) publish(eventType kafka.EventType, order domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(kafka.NewOrderEvent(eventType, order, nil)); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish order event to kafka")
	}
}

// UsedIDs возвращает числовые id сохранённых заказов, чтобы исключить их из пула.
func UsedIDs(ctx context.Context, orders domain.Repository[string, domain.Order]) ([]int, error) {
	all, err := orders.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load persisted order ids: %w", err)
	}
	ids := make([]int, 0, len(all))
	for _, o := range all {
		if n, err := strconv.Atoi(o.ID); err == nil {
			ids = append(ids, n)
		}
	}
	return ids, nil
}
