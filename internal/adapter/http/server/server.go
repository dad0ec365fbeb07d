package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hamza-safwan/mini-ride-booking/config"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/handler"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/middleware"
	wshandler "github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/ws"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health *handler.Health
	ride   *handler.Ride
	user   *handler.User
	ws     *wshandler.Handler
}

// Services are the collaborators the HTTP surface is built on.
type Services struct {
	Rides        handler.RideService
	Locations    handler.LocationReader
	Availability handler.AvailabilityService
	Auth         middleware.AuthService
	WS           *wshandler.Handler

	// Checks are pinged by GET /health.
	Checks []handler.Check
}

func New(cfg config.Config, services Services, logger logger.Logger) (*API, error) {
	if services.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	if services.Rides == nil || services.Locations == nil || services.Availability == nil || services.WS == nil {
		return nil, errors.New("ride, location, availability and websocket services are required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health: handler.NewHealth(cfg.ServiceName, services.Checks, logger),
			ride:   handler.NewRide(services.Rides, services.Locations, logger),
			user:   handler.NewUser(services.Availability, logger),
			ws:     services.WS,
		},
		m:    middleware.NewMiddleware(cfg.ServiceName, services.Auth, logger),
		addr: cfg.Server.Addr(),
		cfg:  cfg,
		log:  logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler is the mux wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	return a.m.Recover(
		a.m.RequestID(
			a.m.Logging(
				a.m.Metrics(
					a.m.Auth(a.mux),
				),
			),
		),
	)
}
