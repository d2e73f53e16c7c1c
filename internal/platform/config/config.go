package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	strutil "roster/pkg/platform/strings"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AllocatorStore = "store"
	AllocatorRedis = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr            string        `env:"ROSTER_ADDR" env-default:":8080" env-description:"HTTP listen address"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`

	Log       LogConfig
	Store     StoreConfig
	Redis     RedisConfig
	Records   RecordsConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" env-default:"memory" env-description:"memory, postgres or sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" env-default:"roster.db"`
}

// RedisConfig is only used when REDIS_URL is set.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

type RecordsConfig struct {
	Allocator          string `env:"ALLOCATOR" env-default:"store" env-description:"store or redis"`
	AllocationAttempts int    `env:"RECORDS_ALLOCATION_ATTEMPTS" env-default:"3"`
	EmptyListOK        bool   `env:"RECORDS_EMPTY_LIST_OK" env-default:"false"`
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" env-separator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" env-default:"roster.audit"`
}

// RateLimitConfig disables limiting when RPS is zero.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"20"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Server, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Server{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg Server
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Server{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Records.Allocator {
	case AllocatorStore:
	case AllocatorRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis allocator")
		}
	default:
		return fmt.Errorf("unknown ALLOCATOR %q", c.Records.Allocator)
	}
	if c.Records.AllocationAttempts < 1 {
		return errors.New("RECORDS_ALLOCATION_ATTEMPTS must be at least 1")
	}
	return nil
}

// Usage describes every recognised variable, for the CLI help text.
func Usage() string {
	var cfg Server
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
