package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const outcomeOK = "ok"

// StorageMetrics содержит метрики слоя хранения и выдачи заказов.
type StorageMetrics struct {
	// Операции движков
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	// Пул идентификаторов заказов
	poolRemaining prometheus.Gauge

	ordersCreated prometheus.Counter
}

var _ domain.StorageObserver = (*StorageMetrics)(nil)

// NewStorageMetrics регистрирует метрики в DefaultRegisterer.
func NewStorageMetrics() *StorageMetrics {
	return NewStorageMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorageMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewStorageMetricsWithRegisterer(registerer prometheus.Registerer) *StorageMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorageMetrics{
		operations: register(registerer, "ecom_storage_operations_total",
			prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ecom_storage_operations_total",
				Help: "Total number of storage operations by entity kind, operation and outcome",
			}, []string{"kind", "op", "outcome"})),
		duration: register(registerer, "ecom_storage_operation_duration_seconds",
			prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ecom_storage_operation_duration_seconds",
				Help:    "Duration of storage operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			}, []string{"kind", "op"})),
		poolRemaining: register(registerer, "ecom_orderid_pool_remaining",
			prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ecom_orderid_pool_remaining",
				Help: "Number of order identifiers left in the pool",
			})),
		ordersCreated: register(registerer, "ecom_orders_created_total",
			prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecom_orders_created_total",
				Help: "Total number of orders created",
			})),
	}
}

// ObserveOperation учитывает операцию движка. Исход - "ok" или вид ошибки.
func (m *StorageMetrics) ObserveOperation(kind domain.Kind, op string, err error, elapsed time.Duration) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	m.operations.WithLabelValues(string(kind), op, outcome).Inc()
	m.duration.WithLabelValues(string(kind), op).Observe(elapsed.Seconds())
}

// PoolSize обновляет остаток пула идентификаторов.
func (m *StorageMetrics) PoolSize(remaining int) {
	m.poolRemaining.Set(float64(remaining))
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *StorageMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}
