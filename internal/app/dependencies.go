package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/metrics"
	"github.com/vladislavdragonenkov/ecom/internal/orderid"
	"github.com/vladislavdragonenkov/ecom/internal/service/ordering"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
	"github.com/vladislavdragonenkov/ecom/internal/storage/relational"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Metrics  *metrics.StorageMetrics
	Storage  *storage.Factory
	IDs      *orderid.Allocator
	Producer *kafka.Producer
	Orders   *ordering.Service
	Logger   *log.Entry
}

// DependencyOption настраивает NewDependencies.
type DependencyOption func(*dependencyOptions)

type dependencyOptions struct {
	registerer prometheus.Registerer
	storage    []storage.Option
}

// WithRegisterer регистрирует метрики в заданном реестре вместо глобального.
func WithRegisterer(r prometheus.Registerer) DependencyOption {
	return func(o *dependencyOptions) {
		o.registerer = r
	}
}

// WithStorageOptions передаёт дополнительные опции фабрике хранилищ.
func WithStorageOptions(opts ...storage.Option) DependencyOption {
	return func(o *dependencyOptions) {
		o.storage = append(o.storage, opts...)
	}
}

// NewDependencies открывает хранилища, восстанавливает пул id и собирает сервис заказов.
// При ошибке всё уже открытое закрывается.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry, opts ...DependencyOption) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	o := dependencyOptions{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	deps := &Dependencies{
		Metrics: metrics.NewStorageMetricsWithRegisterer(o.registerer),
		Logger:  logger,
	}
	storageOpts := append([]storage.Option{
		storage.WithLogger(logger.WithField("component", "storage")),
		storage.WithObserver(deps.Metrics),
	}, o.storage...)
	deps.Storage = storage.NewFactory(cfg.StorageConfig(), storageOpts...)

	if err := deps.init(ctx, cfg); err != nil {
		if closeErr := deps.Close(ctx); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) init(ctx context.Context, cfg Config) error {
	if cfg.AutoMigrate {
		session, err := d.Storage.Session(ctx)
		if err != nil {
			return fmt.Errorf("open relational store: %w", err)
		}
		if err := relational.AutoMigrate(ctx, session); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		d.Logger.Info("relational schema migrated")
	}

	orders, err := d.Storage.Orders(ctx)
	if err != nil {
		return fmt.Errorf("orders engine: %w", err)
	}
	products, err := d.Storage.Products(ctx)
	if err != nil {
		return fmt.Errorf("products engine: %w", err)
	}

	used, err := ordering.UsedIDs(ctx, orders)
	if err != nil {
		return err
	}
	d.IDs, err = orderid.New(cfg.OrderIDCapacity,
		orderid.WithExclude(used...),
		orderid.WithObserver(d.Metrics),
	)
	if err != nil {
		return fmt.Errorf("order id pool: %w", err)
	}
	d.Logger.WithFields(log.Fields{
		"capacity":  d.IDs.Capacity(),
		"remaining": d.IDs.Remaining(),
	}).Info("order id pool ready")

	// без брокера сервис работает, события просто не публикуются
	d.Producer, _ = initKafkaProducer(cfg.KafkaBrokers, d.Logger)

	serviceOpts := []ordering.Option{ordering.WithMetrics(d.Metrics)}
	if d.Producer != nil {
		serviceOpts = append(serviceOpts, ordering.WithPublisher(d.Producer))
	}
	if cfg.AutoRefresh {
		serviceOpts = append(serviceOpts, ordering.WithAutoRefresh())
	}
	d.Orders = ordering.NewService(orders, products, d.IDs, d.Logger.WithField("component", "ordering"), serviceOpts...)
	return nil
}

// Close освобождает producer и хранилища.
func (d *Dependencies) Close(ctx context.Context) error {
	closeKafka(d.Producer, d.Logger)
	d.Producer = nil
	if d.Storage == nil {
		return nil
	}
	return d.Storage.Close(ctx)
}
