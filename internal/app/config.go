package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/ecom/internal/orderid"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
	"github.com/vladislavdragonenkov/ecom/internal/storage/postgres"
	"github.com/vladislavdragonenkov/ecom/internal/storage/relational"
)

const (
	envPrefix     = "ECOM_"
	envConfigFile = envPrefix + "CONFIG_FILE"
)

// Config описывает настройки запуска сервиса и утилиты.
// Порядок применения: DefaultConfig, затем YAML-файл, затем переменные ECOM_*.
type Config struct {
	GRPCAddr    string `yaml:"grpc_addr" env:"GRPC_ADDR"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`

	RelationalDriver string        `yaml:"relational_driver" env:"RELATIONAL_DRIVER"`
	RelationalDSN    string        `yaml:"relational_dsn" env:"RELATIONAL_DSN"`
	AutoMigrate      bool          `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	OpTimeout        time.Duration `yaml:"op_timeout" env:"OP_TIMEOUT"`
	PostgresMaxConns int           `yaml:"postgres_max_conns" env:"POSTGRES_MAX_CONNS"`

	DocumentDriver     string `yaml:"document_driver" env:"DOCUMENT_DRIVER"`
	MongoURI           string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase      string `yaml:"mongo_database" env:"MONGO_DATABASE"`
	DocumentCollection string `yaml:"document_collection" env:"DOCUMENT_COLLECTION"`
	RedisAddr          string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword      string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB            int    `yaml:"redis_db" env:"REDIS_DB"`

	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" envSeparator:","`

	OrderIDCapacity     int           `yaml:"order_id_capacity" env:"ORDER_ID_CAPACITY"`
	AutoRefresh         bool          `yaml:"auto_refresh" env:"AUTO_REFRESH"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" env:"HEALTH_CHECK_INTERVAL"`
}

// DefaultConfig возвращает настройки для локального запуска на SQLite и памяти.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		RelationalDriver:    string(relational.DriverSQLite),
		RelationalDSN:       "file:ecom.db?cache=shared",
		AutoMigrate:         true,
		OpTimeout:           relational.DefaultOpTimeout,
		DocumentDriver:      string(storage.DocumentMemory),
		MongoDatabase:       "ecom",
		DocumentCollection:  "products",
		OrderIDCapacity:     orderid.DefaultCapacity,
		HealthCheckInterval: 10 * time.Second,
	}
}

// LoadConfig собирает конфигурацию. Пустой path берётся из ECOM_CONFIG_FILE.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = cleanBrokers(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GRPCAddr) == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}
	if strings.TrimSpace(c.MetricsAddr) == "" {
		errs = append(errs, errors.New("metrics address is required"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch relational.Driver(c.RelationalDriver) {
	case relational.DriverPostgres, relational.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported relational driver %q", c.RelationalDriver))
	}
	if strings.TrimSpace(c.RelationalDSN) == "" {
		errs = append(errs, errors.New("relational dsn is required"))
	}
	if c.OpTimeout <= 0 {
		errs = append(errs, errors.New("operation timeout must be positive"))
	}

	switch storage.DocumentDriver(c.DocumentDriver) {
	case storage.DocumentMemory:
	case storage.DocumentMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("mongo uri is required for mongo document driver"))
		}
	case storage.DocumentRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis address is required for redis document driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported document driver %q", c.DocumentDriver))
	}

	if c.OrderIDCapacity <= 0 {
		errs = append(errs, errors.New("order id capacity must be positive"))
	}
	if c.HealthCheckInterval <= 0 {
		errs = append(errs, errors.New("health check interval must be positive"))
	}
	return errors.Join(errs...)
}

// Level возвращает уровень логирования, info при ошибке разбора.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// StorageConfig переводит настройки в конфигурацию фабрики хранилищ.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Relational: relational.Config{
			Driver:    relational.Driver(c.RelationalDriver),
			DSN:       c.RelationalDSN,
			OpTimeout: c.OpTimeout,
			Pool: postgres.PoolConfig{
				MaxOpenConns: c.PostgresMaxConns,
				MaxIdleConns: c.PostgresMaxConns,
			},
		},
		Document: storage.DocumentConfig{
			Driver:        storage.DocumentDriver(c.DocumentDriver),
			URI:           c.MongoURI,
			Database:      c.MongoDatabase,
			Collection:    c.DocumentCollection,
			RedisAddr:     c.RedisAddr,
			RedisPassword: c.RedisPassword,
			RedisDB:       c.RedisDB,
		},
		OpTimeout: c.OpTimeout,
	}
}

func cleanBrokers(brokers []string) []string {
	out := brokers[:0]
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
