package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" env-default:"20"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" env-default:"40"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// DBDriver is postgres, sqlite or memory.
	DBDriver      string   `yaml:"db_driver" env:"DB_DRIVER" env-default:"postgres"`
	DBDSN         string   `yaml:"db_dsn" env:"DB_DSN" env-default:"host=localhost port=5432 user=blog password=blog dbname=blog sslmode=disable"`
	DBReplicaDSNs []string `yaml:"db_replica_dsns" env:"DB_REPLICA_DSNS" env-separator:";"`
	DBMaxOpen     int      `yaml:"db_max_open" env:"DB_MAX_OPEN_CONNS" env-default:"40"`
	DBMaxIdle     int      `yaml:"db_max_idle" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	AutoMigrate   bool     `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`

	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"5m"`

	// EventsDriver is none, nats or kafka.
	EventsDriver     string        `yaml:"events_driver" env:"EVENTS_DRIVER" env-default:"none"`
	NATSURL          string        `yaml:"nats_url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	KafkaBrokers     string        `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaTopic       string        `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"blogadmin.posts"`
	KafkaAcks        string        `yaml:"kafka_acks" env:"KAFKA_REQUIRED_ACKS" env-default:"one"`
	PublishTimeout   time.Duration `yaml:"publish_timeout" env:"EVENTS_PUBLISH_TIMEOUT" env-default:"2s"`
	BreakerThreshold int           `yaml:"breaker_threshold" env:"EVENTS_BREAKER_THRESHOLD" env-default:"5"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" env:"EVENTS_BREAKER_COOLDOWN" env-default:"30s"`

	S3Region   string `yaml:"s3_region" env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket   string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Endpoint string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`

	OTELEndpoint    string  `yaml:"otel_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName string  `yaml:"otel_service_name" env:"OTEL_SERVICE_NAME" env-default:"blogadmin"`
	OTELSampleRatio float64 `yaml:"otel_sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
}

// Load reads CONFIG_FILE (YAML or .env) when set, otherwise the
// environment alone. Environment variables win over file values.
func Load() (*Config, error) {
	var cfg Config

	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(c.DBDriver)
	switch c.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, sqlite or memory, got %q", c.DBDriver)
	}
	c.EventsDriver = strings.ToLower(c.EventsDriver)
	switch c.EventsDriver {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("EVENTS_DRIVER must be none, nats or kafka, got %q", c.EventsDriver)
	}
	if c.OTELSampleRatio < 0 || c.OTELSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0,1], got %v", c.OTELSampleRatio)
	}
	return nil
}
