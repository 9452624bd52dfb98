// Package relational реализует контракт хранения поверх gorm.
package relational

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vladislavdragonenkov/ecom/internal/storage/postgres"
)

// Driver - тип реляционной базы.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

const (
	// DefaultOpTimeout ограничивает каждую операцию движка.
	DefaultOpTimeout     = 5 * time.Second
	defaultSlowThreshold = time.Second
)

// Config описывает подключение к реляционной базе.
type Config struct {
	Driver    Driver
	DSN       string
	OpTimeout time.Duration
	Pool      postgres.PoolConfig
}

// Session выдаёт транзакции поверх одного пула подключений.
// Каждый вызов InTx получает собственную gorm-сессию.
type Session struct {
	db      *gorm.DB
	timeout time.Duration
	close   func() error
}

// Open подключается к базе и настраивает gorm.
func Open(ctx context.Context, cfg Config, logger *log.Entry) (*Session, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	gormCfg := &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(logger),
	}

	switch cfg.Driver {
	case DriverPostgres:
		store, err := postgres.OpenWithPool(ctx, cfg.DSN, cfg.Pool)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: store.DB()}), gormCfg)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open gorm on postgres: %w", err)
		}
		s := NewSession(db, cfg.OpTimeout)
		s.close = store.Close
		return s, nil

	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.DSN, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		// sqlite не допускает параллельных писателей
		sqlDB.SetMaxOpenConns(1)
		s := NewSession(db, cfg.OpTimeout)
		s.close = sqlDB.Close
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}
}

// NewSession оборачивает готовый gorm.DB. Нулевой timeout заменяется DefaultOpTimeout.
func NewSession(db *gorm.DB, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return &Session{db: db, timeout: timeout}
}

// InTx выполняет fn в транзакции с ограничением по времени.
// Commit при nil, rollback при ошибке или панике.
func (s *Session) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(fn)
}

// DB возвращает корневой gorm.DB.
func (s *Session) DB() *gorm.DB {
	return s.db
}

// Timeout возвращает лимит одной операции.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Ping проверяет доступность базы.
func (s *Session) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close освобождает пул подключений.
func (s *Session) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

func newGormLogger(logger *log.Entry) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.Logger.IsLevelEnabled(log.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(
		logger.WithField("component", "gorm"),
		gormlogger.Config{
			SlowThreshold:             defaultSlowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
