package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  driver: postgres
  password: topsecret
location:
  store: redis
  ttl: 30s
events:
  sinks: [rabbitmq, kafka]
kafka:
  brokers: [k1:9092, k2:9092]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_PASSWORD", "LOCATION_STORE", "LOCATION_TTL", "EVENTS_SINKS", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if cfg.Database.Driver != types.StoragePostgres {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Location.Store != types.LocationRedis || cfg.Location.TTL.Seconds() != 30 {
		t.Fatalf("location = %+v", cfg.Location)
	}
	if !cfg.Events.HasSink(types.SinkKafka) || !cfg.Events.HasSink(types.SinkRabbitMQ) {
		t.Fatalf("sinks = %v", cfg.Events.Sinks)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port not applied: %q", cfg.Server.Port)
	}
	if got := cfg.Database.GetDSN(); !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("dsn = %q", got)
	}

	var out bytes.Buffer
	WriteConfig(&out, cfg)
	if strings.Contains(out.String(), "topsecret") || strings.Contains(out.String(), cfg.Auth.JWTSecret) {
		t.Fatalf("secrets must be masked:\n%s", out.String())
	}
}

func TestNewConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	if _, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
}
