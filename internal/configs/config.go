package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	Migrate  bool   `env:"DB_MIGRATE" envDefault:"true"`
}

type RESTconfig struct {
	PORT        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// EngineConfig - параметры fan-out по партициям
type EngineConfig struct {
	PartitionTimeout time.Duration `env:"ENGINE_PARTITION_TIMEOUT" envDefault:"5s"`
	MaxParallel      int           `env:"ENGINE_MAX_PARALLEL" envDefault:"8"`
	WeightedAverages bool          `env:"ENGINE_WEIGHTED_AVERAGES" envDefault:"false"`
	TrendMonths      int           `env:"TREND_MONTHS" envDefault:"12"`
}

type CacheConfig struct {
	Enabled  bool          `env:"CACHE_ENABLED" envDefault:"false"`
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"60s"`
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled     bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
	URL         string `env:"RABBITMQ_URL"`
	IngestQueue string `env:"INGEST_QUEUE" envDefault:"listings.ingest"`
}

type FluentBitConfig struct {
	Enabled bool   `env:"FLUENTBIT_ENABLED" envDefault:"false"`
	Host    string `env:"FLUENTBIT_HOST"`
	Port    int    `env:"FLUENTBIT_PORT" envDefault:"24224"`
	Level   string `env:"FLUENTBIT_LOG_LEVEL" envDefault:"info"`
}

type StdoutLogConfig struct {
	Level  string `env:"STDOUT_LOG_LEVEL" envDefault:"debug"`
	IsJSON bool   `env:"STDOUT_LOG_JSON" envDefault:"false"`
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string `env:"APP_NAME" envDefault:"analytics-service"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`

	Database     DBconfig
	Rest         RESTconfig
	Engine       EngineConfig
	Cache        CacheConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env читается, если он есть.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if len(envPath) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found, using process environment.\n")
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *AppConfig) validate() error {
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}

	if cfg.Engine.PartitionTimeout <= 0 {
		return fmt.Errorf("ENGINE_PARTITION_TIMEOUT must be positive, got %s", cfg.Engine.PartitionTimeout)
	}
	if cfg.Engine.TrendMonths <= 0 {
		return fmt.Errorf("TREND_MONTHS must be positive, got %d", cfg.Engine.TrendMonths)
	}

	if cfg.FluentBit.Enabled && cfg.FluentBit.Host == "" {
		log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
		cfg.FluentBit.Enabled = false
	}
	return nil
}
