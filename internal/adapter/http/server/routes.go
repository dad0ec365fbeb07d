package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hamza-safwan/mini-ride-booking/docs"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)

	a.setupSwaggerRoutes()
	a.setupMetricsRoute()
	a.setupRideRoutes()
	a.setupUserRoutes()

	// Persistent connection for passengers and drivers
	a.mux.HandleFunc("GET /ws", a.routes.ws.ServeWS)
}

func (a *API) setupRideRoutes() {
	m, h := a.m, a.routes.ride

	a.mux.Handle("POST /rides", m.RequireRoles(h.CreateRide, types.RolePassenger))                 // Request a ride
	a.mux.Handle("GET /rides", m.RequireRoles(h.ListMyRides))                                      // Rides I take part in
	a.mux.Handle("GET /rides/available", m.RequireRoles(h.ListAvailableRides, types.RoleDriver))   // Open requests
	a.mux.Handle("GET /rides/{ride_id}", m.RequireRoles(h.GetRide))                                // Ride details
	a.mux.Handle("POST /rides/{ride_id}/accept", m.RequireRoles(h.AcceptRide, types.RoleDriver))   // Accept a ride
	a.mux.Handle("POST /rides/{ride_id}/reject", m.RequireRoles(h.RejectRide, types.RoleDriver))   // Reject a ride
	a.mux.Handle("PATCH /rides/{ride_id}/status", m.RequireRoles(h.AdvanceRide, types.RoleDriver)) // Start or complete a ride
	a.mux.Handle("DELETE /rides/{ride_id}", m.RequireRoles(h.RemoveRide))                          // Delete a ride
	a.mux.Handle("GET /rides/{ride_id}/location", m.RequireRoles(h.GetLocation))                   // Latest driver position
}

func (a *API) setupUserRoutes() {
	m, h := a.m, a.routes.user

	a.mux.Handle("GET /users/availability", m.RequireRoles(h.GetAvailability, types.RoleDriver))      // Driver availability
	a.mux.Handle("PATCH /users/availability", m.RequireRoles(h.ToggleAvailability, types.RoleDriver)) // Toggle availability
}

// setupSwaggerRoutes serves the Swagger UI for the registered document
func (a *API) setupSwaggerRoutes() {
	swaggerURL := httpSwagger.InstanceName(docs.InstanceName)
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func (a *API) setupMetricsRoute() {
	a.mux.Handle("GET /metrics", promhttp.Handler())
}
