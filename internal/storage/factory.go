// Package storage собирает движки хранения по типу сущности.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/storage/document"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
	"github.com/vladislavdragonenkov/ecom/internal/storage/mongo"
	"github.com/vladislavdragonenkov/ecom/internal/storage/redis"
	"github.com/vladislavdragonenkov/ecom/internal/storage/relational"
)

// DocumentDriver - тип документного хранилища.
type DocumentDriver string

const (
	DocumentMemory DocumentDriver = "memory"
	DocumentMongo  DocumentDriver = "mongo"
	DocumentRedis  DocumentDriver = "redis"
)

var (
	// ErrFactoryClosed возвращается после Close.
	ErrFactoryClosed = errors.New("storage factory is closed")
	// ErrEngineType - движок не реализует запрошенный контракт.
	ErrEngineType = errors.New("engine type mismatch")
)

// DocumentConfig описывает документное хранилище.
type DocumentConfig struct {
	Driver        DocumentDriver
	URI           string
	Database      string
	Collection    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Config - настройки обоих хранилищ.
type Config struct {
	Relational relational.Config
	Document   DocumentConfig
	OpTimeout  time.Duration
}

type builder func(ctx context.Context, f *Factory) (any, error)

// Option настраивает Factory.
type Option func(*Factory)

// WithLogger задаёт логгер фабрики и gorm.
func WithLogger(logger *log.Entry) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithObserver подключает наблюдателя ко всем движкам.
func WithObserver(o domain.StorageObserver) Option {
	return func(f *Factory) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithSession подставляет уже открытую реляционную сессию.
func WithSession(s *relational.Session) Option {
	return func(f *Factory) {
		f.sessionOnce.Do(func() {
			f.session = s
		})
	}
}

// WithCollection подставляет уже открытую документную коллекцию.
func WithCollection(c document.Collection) Option {
	return func(f *Factory) {
		f.collectionOnce.Do(func() {
			f.collection = c
		})
	}
}

// Factory лениво открывает хранилища и кэширует один движок на тип сущности.
// Создаётся один раз при старте процесса и закрывается явно.
type Factory struct {
	cfg      Config
	logger   *log.Entry
	observer domain.StorageObserver

	// connMu защищает подключения и closed; порядок захвата: mu, затем connMu.
	connMu      sync.Mutex
	closed      bool
	sessionOnce sync.Once
	session     *relational.Session
	sessionErr  error

	collectionOnce sync.Once
	collection     document.Collection
	collectionErr  error

	mu       sync.Mutex
	builders map[domain.Kind]builder
	engines  map[domain.Kind]any
}

// NewFactory регистрирует движки для customer, address, order и product.
func NewFactory(cfg Config, opts ...Option) *Factory {
	f := &Factory{
		cfg:      cfg,
		logger:   log.WithField("component", "storage"),
		observer: domain.NoopObserver{},
		engines:  make(map[domain.Kind]any),
		builders: map[domain.Kind]builder{
			domain.KindCustomer: buildCustomers,
			domain.KindAddress:  buildAddresses,
			domain.KindOrder:    buildOrders,
			domain.KindProduct:  buildProducts,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create возвращает движок для типа сущности, создавая его при первом обращении.
func (f *Factory) Create(ctx context.Context, kind domain.Kind) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isClosed() {
		return nil, ErrFactoryClosed
	}
	if engine, ok := f.engines[kind]; ok {
		return engine, nil
	}
	build, ok := f.builders[kind]
	if !ok {
		return nil, fmt.Errorf("create engine for %q: %w", kind, domain.ErrKindNotRegistered)
	}

	engine, err := build(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("create engine for %q: %w", kind, err)
	}
	f.engines[kind] = engine
	f.logger.WithField("kind", kind).Debug("storage engine created")
	return engine, nil
}

// Resolve возвращает движок, проверяя, что он реализует Repository[K, V].
func Resolve[K comparable, V any](ctx context.Context, f *Factory, kind domain.Kind) (domain.Repository[K, V], error) {
	engine, err := f.Create(ctx, kind)
	if err != nil {
		return nil, err
	}
	repo, ok := engine.(domain.Repository[K, V])
	if !ok {
		return nil, fmt.Errorf("engine for %q is %T: %w", kind, engine, ErrEngineType)
	}
	return repo, nil
}

// Customers возвращает движок клиентов с поиском по имени и городу.
func (f *Factory) Customers(ctx context.Context) (*relational.CustomerEngine, error) {
	engine, err := f.Create(ctx, domain.KindCustomer)
	if err != nil {
		return nil, err
	}
	customers, ok := engine.(*relational.CustomerEngine)
	if !ok {
		return nil, fmt.Errorf("engine for %q is %T: %w", domain.KindCustomer, engine, ErrEngineType)
	}
	return customers, nil
}

// Addresses возвращает движок адресов.
func (f *Factory) Addresses(ctx context.Context) (domain.Repository[int64, domain.Address], error) {
	return Resolve[int64, domain.Address](ctx, f, domain.KindAddress)
}

// Orders возвращает движок заказов.
func (f *Factory) Orders(ctx context.Context) (domain.Repository[string, domain.Order], error) {
	return Resolve[string, domain.Order](ctx, f, domain.KindOrder)
}

// Products возвращает адаптер каталога товаров.
func (f *Factory) Products(ctx context.Context) (domain.Repository[string, domain.Product], error) {
	return Resolve[string, domain.Product](ctx, f, domain.KindProduct)
}

// Session открывает реляционную сессию при первом обращении.
// Ошибка первого открытия кэшируется и возвращается всем. После Close - ErrFactoryClosed.
func (f *Factory) Session(ctx context.Context) (*relational.Session, error) {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.closed {
		return nil, ErrFactoryClosed
	}
	f.sessionOnce.Do(func() {
		cfg := f.cfg.Relational
		if cfg.OpTimeout <= 0 {
			cfg.OpTimeout = f.cfg.OpTimeout
		}
		f.session, f.sessionErr = relational.Open(ctx, cfg, f.logger)
		if f.sessionErr == nil {
			f.logger.WithField("driver", cfg.Driver).Info("relational store connected")
		}
	})
	return f.session, f.sessionErr
}

// Collection открывает документную коллекцию при первом обращении.
func (f *Factory) Collection(ctx context.Context) (document.Collection, error) {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.closed {
		return nil, ErrFactoryClosed
	}
	f.collectionOnce.Do(func() {
		f.collection, f.collectionErr = openCollection(ctx, f.cfg.Document)
		if f.collectionErr == nil {
			f.logger.WithField("driver", f.cfg.Document.Driver).Info("document store connected")
		}
	})
	return f.collection, f.collectionErr
}

// Ping проверяет оба хранилища, при необходимости открывая их.
func (f *Factory) Ping(ctx context.Context) error {
	var errs []error
	if s, err := f.Session(ctx); err != nil {
		errs = append(errs, err)
	} else if err := s.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("relational: %w", err))
	}
	if c, err := f.Collection(ctx); err != nil {
		errs = append(errs, err)
	} else if err := c.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("document: %w", err))
	}
	return errors.Join(errs...)
}

// Close освобождает подключения. Повторный вызов ничего не делает.
func (f *Factory) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.engines = make(map[domain.Kind]any)

	var errs []error
	if f.session != nil {
		if err := f.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relational: %w", err))
		}
	}
	if f.collection != nil {
		if err := f.collection.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close document: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (f *Factory) isClosed() bool {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	return f.closed
}

func (f *Factory) timeout() time.Duration {
	if f.cfg.OpTimeout > 0 {
		return f.cfg.OpTimeout
	}
	return relational.DefaultOpTimeout
}

func buildCustomers(ctx context.Context, f *Factory) (any, error) {
	session, err := f.Session(ctx)
	if err != nil {
		return nil, err
	}
	return relational.NewCustomerEngine(session, relational.WithObserver(f.observer))
}

func buildAddresses(ctx context.Context, f *Factory) (any, error) {
	session, err := f.Session(ctx)
	if err != nil {
		return nil, err
	}
	return relational.NewEngine(session, relational.AddressDescriptor(), relational.WithObserver(f.observer))
}

func buildOrders(ctx context.Context, f *Factory) (any, error) {
	session, err := f.Session(ctx)
	if err != nil {
		return nil, err
	}
	return relational.NewEngine(session, relational.OrderDescriptor(), relational.WithObserver(f.observer))
}

func buildProducts(ctx context.Context, f *Factory) (any, error) {
	coll, err := f.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return document.NewProductAdapter(coll,
		document.WithTimeout(f.timeout()),
		document.WithObserver(f.observer),
	), nil
}

func openCollection(ctx context.Context, cfg DocumentConfig) (document.Collection, error) {
	name := cfg.Collection
	if name == "" {
		name = "products"
	}

	switch cfg.Driver {
	case DocumentMemory, "":
		return memory.NewCollection(name), nil
	case DocumentMongo:
		coll, err := mongo.Open(ctx, mongo.Config{URI: cfg.URI, Database: cfg.Database, Collection: name})
		if err != nil {
			return nil, err
		}
		return coll, nil
	case DocumentRedis:
		coll, err := redis.Open(ctx, redis.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			Collection: name,
		})
		if err != nil {
			return nil, err
		}
		return coll, nil
	default:
		return nil, fmt.Errorf("unsupported document driver %q", cfg.Driver)
	}
}
