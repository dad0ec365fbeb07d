package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"ride-booking"`
		LogLevel    string `env:"LOG_LEVEL" default:"INFO"`

		Server    ServerConfig
		Database  DatabaseConfig
		Redis     RedisConfig
		Location  LocationConfig
		Events    EventsConfig
		RabbitMQ  RabbitMQConfig
		Kafka     KafkaConfig
		WebSocket WebSocketConfig
		Auth      Auth
	}

	ServerConfig struct {
		Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
		Port            string        `env:"SERVER_PORT" default:"8080"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
	}

	DatabaseConfig struct {
		Driver types.StorageDriver `env:"DATABASE_DRIVER" default:"memory"`

		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"ride_user"`
		Password string `env:"DATABASE_PASSWORD" default:"ride_pass"`
		Database string `env:"DATABASE_DATABASE" default:"ride_db"`
		SSLMode  string `env:"DATABASE_SSLMODE" default:"disable"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`

		// YAML file of users loaded into the directory at start-up.
		SeedPath string `env:"DATABASE_SEED_PATH"`
	}

	RedisConfig struct {
		Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	LocationConfig struct {
		Store types.LocationStore `env:"LOCATION_STORE" default:"memory"`
		TTL   time.Duration       `env:"LOCATION_TTL" default:"2m"`
	}

	EventsConfig struct {
		Sinks   []types.EventSink `env:"EVENTS_SINKS"`
		Timeout time.Duration     `env:"EVENTS_TIMEOUT" default:"3s"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	KafkaConfig struct {
		Brokers []string `env:"KAFKA_BROKERS" default:"localhost:9092"`
		Topic   string   `env:"KAFKA_TOPIC" default:"ride.events"`
	}

	WebSocketConfig struct {
		SendBuffer     int           `env:"WEBSOCKET_SEND_BUFFER" default:"64"`
		WriteWait      time.Duration `env:"WEBSOCKET_WRITE_WAIT" default:"10s"`
		PongWait       time.Duration `env:"WEBSOCKET_PONG_WAIT" default:"60s"`
		PingPeriod     time.Duration `env:"WEBSOCKET_PING_PERIOD" default:"54s"`
		MaxMessageSize int64         `env:"WEBSOCKET_MAX_MESSAGE_SIZE" default:"4096"`
	}

	Auth struct {
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"24h"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// HasSink reports whether sink is enabled.
func (c EventsConfig) HasSink(sink types.EventSink) bool {
	for _, s := range c.Sinks {
		if strings.EqualFold(string(s), string(sink)) {
			return true
		}
	}
	return false
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case types.StorageMemory, types.StoragePostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Location.Store {
	case types.LocationMemory, types.LocationRedis:
	default:
		return fmt.Errorf("unknown location store %q", c.Location.Store)
	}

	for _, s := range c.Events.Sinks {
		if s != types.SinkRabbitMQ && s != types.SinkKafka {
			return fmt.Errorf("unknown event sink %q", s)
		}
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret must be set")
	}
	return nil
}
