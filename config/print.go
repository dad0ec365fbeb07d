package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

const masked = "********"

// PrintConfig writes the effective configuration to stdout with secrets masked.
func PrintConfig(cfg *Config) {
	WriteConfig(os.Stdout, cfg)
}

func WriteConfig(w io.Writer, cfg *Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	row := func(key string, value any) {
		fmt.Fprintf(tw, "  %s\t%v\n", key, value)
	}

	fmt.Fprintln(tw, "Configuration:")
	row("service", cfg.ServiceName)
	row("log level", cfg.LogLevel)
	row("server.addr", cfg.Server.Addr())

	row("database.driver", cfg.Database.Driver)
	if cfg.Database.Driver == "postgres" {
		row("database.addr", cfg.Database.Host+":"+cfg.Database.Port)
		row("database.name", cfg.Database.Database)
		row("database.user", cfg.Database.User)
		row("database.password", mask(cfg.Database.Password))
	}
	if cfg.Database.SeedPath != "" {
		row("database.seed_path", cfg.Database.SeedPath)
	}

	row("location.store", cfg.Location.Store)
	row("location.ttl", cfg.Location.TTL)
	if cfg.Location.Store == "redis" {
		row("redis.addr", cfg.Redis.Addr)
		row("redis.password", mask(cfg.Redis.Password))
	}

	sinks := make([]string, 0, len(cfg.Events.Sinks))
	for _, s := range cfg.Events.Sinks {
		sinks = append(sinks, string(s))
	}
	row("events.sinks", strings.Join(sinks, ","))
	if cfg.Events.HasSink("rabbitmq") {
		row("rabbitmq.addr", cfg.RabbitMQ.Host+":"+cfg.RabbitMQ.Port)
		row("rabbitmq.password", mask(cfg.RabbitMQ.Password))
	}
	if cfg.Events.HasSink("kafka") {
		row("kafka.brokers", strings.Join(cfg.Kafka.Brokers, ","))
		row("kafka.topic", cfg.Kafka.Topic)
	}

	row("auth.jwt_secret", mask(cfg.Auth.JWTSecret))
	row("auth.access_token_ttl", cfg.Auth.AccessTokenTTL)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return masked
}
