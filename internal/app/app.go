package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/config"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/handler"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/server"
	wshandler "github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/ws"
	kafkaadapter "github.com/hamza-safwan/mini-ride-booking/internal/adapter/kafka"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/memory"
	repo "github.com/hamza-safwan/mini-ride-booking/internal/adapter/postgres"
	rabbitadapter "github.com/hamza-safwan/mini-ride-booking/internal/adapter/rabbit"
	redisadapter "github.com/hamza-safwan/mini-ride-booking/internal/adapter/redis"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/auth"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/booking"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/dispatch"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/relay"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/ride"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/postgres"
	"github.com/hamza-safwan/mini-ride-booking/pkg/rabbit"
	"github.com/hamza-safwan/mini-ride-booking/pkg/redis"
	"github.com/hamza-safwan/mini-ride-booking/pkg/trm"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

// storage is the backend the ride state machine runs on.
type storage struct {
	rides  ride.RideRepo
	users  userDirectory
	events ride.RideEventRepo
	trm    trm.TxManager
}

type userDirectory interface {
	ride.UserRepo
	booking.UserRepo
	auth.UserRepo
	UserUpserter
}

type App struct {
	httpServer *server.API
	hub        *ws.ConnectionHub
	dispatcher *dispatch.Dispatcher

	postgresDB *postgres.PostgreDB
	redis      *redis.Client
	rabbit     *rabbit.RabbitMQ
	kafka      *kafkaadapter.RideEventWriter

	cfg config.Config
	log logger.Logger
}

// NewApplication connects the configured backends and assembles the service.
// On failure everything opened so far is closed again.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (app *App, err error) {
	ctx = wrap.WithAction(ctx, "init_application")

	app = &App{
		cfg: cfg,
		log: log,
	}
	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	store, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Database.SeedPath != "" {
		users, err := LoadUsers(cfg.Database.SeedPath)
		if err != nil {
			return nil, err
		}
		if err := SeedUsers(ctx, store.users, users); err != nil {
			return nil, err
		}
		log.Info(ctx, "user directory seeded", "users", len(users))
	}

	locations, err := app.initLocationStore(ctx)
	if err != nil {
		return nil, err
	}

	sinks, err := app.initSinks(ctx)
	if err != nil {
		return nil, err
	}

	app.hub = ws.NewConnHub(log)
	router := rooms.NewRouter(app.hub)
	app.dispatcher = dispatch.New(router, log, sinks...).WithSinkTimeout(cfg.Events.Timeout)

	machine := ride.New(store.rides, store.users, store.events, store.trm, log)
	relayService := relay.New(store.rides, locations, app.dispatcher, log)
	bookingService := booking.New(machine, app.dispatcher, relayService, store.users, log)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authService := auth.NewAuthService(store.users, tokens, log)

	wsHandler := wshandler.New(authService, router, relayService, ws.Options{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}, log)

	app.httpServer, err = server.New(cfg, server.Services{
		Rides:        bookingService,
		Locations:    relayService,
		Availability: bookingService,
		Auth:         authService,
		WS:           wsHandler,
		Checks:       app.healthChecks(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	return app, nil
}

func (a *App) initStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.Database.Driver {
	case types.StoragePostgres:
		db, err := postgres.New(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}
		a.postgresDB = db

		if err := repo.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		return &storage{
			rides:  repo.NewRideRepo(db.Pool),
			users:  repo.NewUserRepo(db.Pool),
			events: repo.NewRideEvent(db.Pool),
			trm:    trm.New(db.Pool),
		}, nil

	case types.StorageMemory:
		a.log.Warn(ctx, "using in-memory storage, rides are lost on restart")
		return &storage{
			rides:  memory.NewRideRepo(),
			users:  memory.NewUserRepo(),
			events: memory.NewRideEventRepo(),
			trm:    trm.Noop{},
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}
}

func (a *App) initLocationStore(ctx context.Context) (relay.LocationStore, error) {
	switch a.cfg.Location.Store {
	case types.LocationRedis:
		client, err := redis.New(ctx, redis.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		}, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to setup redis: %w", err)
		}
		a.redis = client
		return redisadapter.NewLocationCache(client, a.cfg.Location.TTL), nil

	case types.LocationMemory:
		return memory.NewLocationStore(a.cfg.Location.TTL), nil

	default:
		return nil, fmt.Errorf("unknown location store %q", a.cfg.Location.Store)
	}
}

func (a *App) initSinks(ctx context.Context) ([]dispatch.Sink, error) {
	var sinks []dispatch.Sink

	if a.cfg.Events.HasSink(types.SinkRabbitMQ) {
		client, err := rabbit.New(ctx, a.cfg.RabbitMQ.GetDSN(), a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to setup rabbitmq: %w", err)
		}
		a.rabbit = client

		broker := rabbitadapter.NewRideBroker(client, a.log)
		if err := broker.Setup(ctx); err != nil {
			return nil, fmt.Errorf("failed to declare ride exchange: %w", err)
		}
		sinks = append(sinks, broker)
	}

	if a.cfg.Events.HasSink(types.SinkKafka) {
		writer := kafkaadapter.Dial(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		if err := writer.EnsureTopic(ctx, 1); err != nil {
			// Brokers with auto-create still accept the writes.
			a.log.Warn(ctx, "failed to ensure kafka topic", "topic", a.cfg.Kafka.Topic, "error", err.Error())
		}
		a.kafka = kafkaadapter.NewRideEventWriter(writer, a.log)
		sinks = append(sinks, a.kafka)
	}

	for _, s := range sinks {
		a.log.Info(ctx, "ride events mirrored", "sink", s.Name())
	}
	return sinks, nil
}

// healthChecks pings every external backend that was opened.
func (a *App) healthChecks() []handler.Check {
	var checks []handler.Check
	if a.postgresDB != nil {
		checks = append(checks, handler.Check{Name: "postgres", Ping: a.postgresDB.Pool.Ping})
	}
	if a.redis != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}})
	}
	if a.rabbit != nil {
		checks = append(checks, handler.Check{Name: "rabbitmq", Ping: func(context.Context) error {
			if a.rabbit.IsConnectionClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}
	return checks
}

// Run serves until SIGINT/SIGTERM or a server failure, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, "run_application")
	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "ride booking service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	a.log.Info(ctx, "ride booking service started", "address", a.cfg.Server.Addr())

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

// close releases resources in reverse dependency order. Safe on a partially built App.
func (a *App) close(ctx context.Context) {
	ctx = wrap.WithAction(context.WithoutCancel(ctx), "close_application")

	if a.hub != nil {
		a.hub.Close()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}

	var errs []error
	if a.rabbit != nil {
		errs = append(errs, a.rabbit.Close(ctx))
	}
	if a.kafka != nil {
		errs = append(errs, a.kafka.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn(ctx, "failed to close event sinks", "error", err.Error())
	}

	a.postgresDB.Close()
}

// IssueToken mints an access token for a directory user. Used by dev tooling.
func IssueToken(ctx context.Context, cfg config.Config, user *models.User) (*models.AccessToken, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, errors.New("user is required")
	}
	return auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL).Issue(ctx, user)
}
