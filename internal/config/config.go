package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ServiceName    = "product-catalog"
	ServiceVersion = "0.1.0"
)

type Config struct {
	HTTPAddr string        `yaml:"http_addr"`
	GRPCAddr string        `yaml:"grpc_addr"`
	MySQL    MySQLConfig   `yaml:"mysql"`
	Redis    RedisConfig   `yaml:"redis"`
	Kafka    KafkaConfig   `yaml:"kafka"`
	Workers  WorkerConfig  `yaml:"workers"`
	Otel     OtelConfig    `yaml:"otel"`
	LogLevel string        `yaml:"log_level"`
	Shutdown time.Duration `yaml:"shutdown_timeout"`
}

type MySQLConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	PoolSize int           `yaml:"pool_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// KafkaConfig is optional: with no broker, events are only logged.
type KafkaConfig struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

type WorkerConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

// OtelConfig enables trace export when Endpoint is set.
type OtelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		MySQL: MySQLConfig{
			DSN:          "root:root@tcp(localhost:3306)/catalog?parseTime=true",
			MaxOpenConns: 50,
			MaxIdleConns: 25,
			ConnLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 100,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic: "product-events",
		},
		Workers: WorkerConfig{
			Count:     10,
			QueueSize: 10000,
		},
		Otel:     OtelConfig{Insecure: true},
		LogLevel: "info",
		Shutdown: 5 * time.Second,
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":     &c.HTTPAddr,
		"GRPC_ADDR":     &c.GRPCAddr,
		"MYSQL_DSN":     &c.MySQL.DSN,
		"REDIS_ADDR":    &c.Redis.Addr,
		"KAFKA_BROKER":  &c.Kafka.Broker,
		"KAFKA_TOPIC":   &c.Kafka.Topic,
		"OTEL_ENDPOINT": &c.Otel.Endpoint,
		"LOG_LEVEL":     &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WORKER_COUNT": &c.Workers.Count,
		"QUEUE_SIZE":   &c.Workers.QueueSize,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		c.Redis.CacheTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc_addr is required"))
	}
	if c.MySQL.DSN == "" {
		errs = append(errs, errors.New("mysql.dsn is required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.Kafka.Broker != "" && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when a broker is set"))
	}
	if c.Workers.Count <= 0 {
		errs = append(errs, errors.New("workers.count must be positive"))
	}
	if c.Workers.QueueSize < 0 {
		errs = append(errs, errors.New("workers.queue_size cannot be negative"))
	}
	if c.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("redis.cache_ttl must be positive"))
	}
	return errors.Join(errs...)
}
