// Package config loads runtime settings from an optional YAML file
// with environment variable overrides for the deploy-specific bits.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultEnv             = "development"
	defaultCurrency        = "INR"
	defaultRedisAddr       = "localhost:6379"
	defaultCommandQueue    = "messages"
	defaultBroadcastTopic  = "market-events"
	defaultTradesTopic     = "db_processor"
	defaultSnapshotPath    = "./snapshot.json"
	defaultSnapshotSeconds = 3
	defaultDrainSeconds    = 2
)

// Config keeps the runtime configuration for the engine process.
type Config struct {
	Env      string         `yaml:"env"`
	Currency string         `yaml:"currency"`
	Markets  []string       `yaml:"markets"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Seed     SeedConfig     `yaml:"seed"`
}

// RedisConfig covers the inbound command queue connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Queue    string `yaml:"queue"`
}

// KafkaConfig covers both outbound pipelines.
type KafkaConfig struct {
	Brokers              []string `yaml:"brokers"`
	BroadcastTopic       string   `yaml:"broadcast_topic"`
	TradesTopic          string   `yaml:"trades_topic"`
	DrainIntervalSeconds int      `yaml:"drain_interval_seconds"`
}

// SnapshotConfig controls periodic state persistence.
type SnapshotConfig struct {
	Path            string `yaml:"path"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	OutboxDir       string `yaml:"outbox_dir"`
}

// SeedConfig funds demo users on a fresh start. Ignored when a
// snapshot restores previous state.
type SeedConfig struct {
	Users       []string `yaml:"users"`
	QuoteAmount float64  `yaml:"quote_amount"`
	BaseAmount  float64  `yaml:"base_amount"`
}

// Load reads the YAML file at path (missing file falls back to
// defaults), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Env:      defaultEnv,
		Currency: defaultCurrency,
		Markets:  []string{"TATA"},
		Redis: RedisConfig{
			Addr:  defaultRedisAddr,
			Queue: defaultCommandQueue,
		},
		Kafka: KafkaConfig{
			Brokers:              []string{"localhost:9092"},
			BroadcastTopic:       defaultBroadcastTopic,
			TradesTopic:          defaultTradesTopic,
			DrainIntervalSeconds: defaultDrainSeconds,
		},
		Snapshot: SnapshotConfig{
			Path:            defaultSnapshotPath,
			IntervalSeconds: defaultSnapshotSeconds,
			OutboxDir:       "./outbox",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if len(cfg.Markets) == 0 {
		return nil, errors.New("at least one market is required")
	}
	if cfg.Snapshot.IntervalSeconds <= 0 {
		return nil, errors.New("snapshot interval must be positive")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getString("APP_ENV", cfg.Env)
	cfg.Redis.Addr = getString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Snapshot.Path = getString("SNAPSHOT_PATH", cfg.Snapshot.Path)
	cfg.Snapshot.OutboxDir = getString("OUTBOX_DIR", cfg.Snapshot.OutboxDir)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
