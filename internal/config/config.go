package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	ServiceName string `mapstructure:"SERVICE_NAME"`

	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	PGMaxConns         int32         `mapstructure:"PG_MAX_CONNS"`
	PGMinConns         int32         `mapstructure:"PG_MIN_CONNS"`
	PGStatementTimeout time.Duration `mapstructure:"PG_STATEMENT_TIMEOUT"`
	PGTxWatchdog       time.Duration `mapstructure:"PG_TX_WATCHDOG"`
	MigrateOnStart     bool          `mapstructure:"MIGRATE_ON_START"`

	RedisAddr  string        `mapstructure:"REDIS_ADDR"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	KafkaBrokersCSV    string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic         string `mapstructure:"KAFKA_TOPIC"`
	FulfillmentGroup   string `mapstructure:"FULFILLMENT_GROUP"`
	FulfillmentWorkers int    `mapstructure:"FULFILLMENT_WORKERS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

var defaults = map[string]any{
	"HTTP_ADDR":            ":8081",
	"SERVICE_NAME":         "marketplace-api",
	"DATABASE_URL":         "",
	"PG_MAX_CONNS":         8,
	"PG_MIN_CONNS":         1,
	"PG_STATEMENT_TIMEOUT": 5 * time.Second,
	"PG_TX_WATCHDOG":       2 * time.Second,
	"MIGRATE_ON_START":     true,
	"REDIS_ADDR":           "redis:6379",
	"SESSION_TTL":          15 * time.Minute,
	"KAFKA_BROKERS":        "kafka:9092",
	"KAFKA_TOPIC":          "order.events",
	"FULFILLMENT_GROUP":    "fulfillment-svc",
	"FULFILLMENT_WORKERS":  4,
	"LOG_LEVEL":            "info",
	"LOG_PRETTY":           false,
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, errors.New("DATABASE_URL must be set")
	}
	if cfg.FulfillmentWorkers <= 0 {
		cfg.FulfillmentWorkers = 1
	}
	return cfg, nil
}

// KafkaBrokers returns the broker list; empty means publishing is disabled.
func (c Config) KafkaBrokers() []string {
	return splitCSV(c.KafkaBrokersCSV)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
