package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/handler/dto"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/validator"
)

type RideService interface {
	CreateRide(ctx context.Context, p models.Principal, pickup, drop models.Location, class types.RideClass) (*models.Ride, error)
	GetRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error)
	ListMyRides(ctx context.Context, p models.Principal) ([]*models.Ride, error)
	ListAvailableRides(ctx context.Context, p models.Principal) ([]*models.Ride, error)
	AcceptRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error)
	RejectRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error)
	AdvanceRide(ctx context.Context, p models.Principal, rideID uuid.UUID, target types.RideStatus, fare *float64) (*models.Ride, error)
	RemoveRide(ctx context.Context, p models.Principal, rideID uuid.UUID) error
}

type LocationReader interface {
	Latest(ctx context.Context, p models.Principal, rideID uuid.UUID) (models.LocationSample, error)
}

type Ride struct {
	service   RideService
	locations LocationReader
	l         logger.Logger
}

func NewRide(service RideService, locations LocationReader, l logger.Logger) *Ride {
	return &Ride{
		service:   service,
		locations: locations,
		l:         l,
	}
}

// CreateRide godoc
// @Summary      Request a ride
// @Description  Creates a ride in the requested state and offers it to every connected driver
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.CreateRideRequest  true  "Pickup, drop and class"
// @Success      201      {object}  models.Ride
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /rides [post]
func (h *Ride) CreateRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_ride")
	p := models.PrincipalFromContext(ctx)

	var req dto.CreateRideRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	ride, err := h.service.CreateRide(ctx, p, req.Pickup.ToModel(), req.Drop.ToModel(), types.RideClass(req.RideClass))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create ride", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ListMyRides godoc
// @Summary      List my rides
// @Description  Rides where the caller is the passenger or the assigned driver, newest first
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        page_size  query     int  false  "Page size"    default(20)
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Router       /rides [get]
func (h *Ride) ListMyRides(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_my_rides")

	page, errs := pageParam(r)
	if errs != nil {
		failedValidationResponse(w, errs)
		return
	}

	rides, err := h.service.ListMyRides(ctx, models.PrincipalFromContext(ctx))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list rides", err)
		serviceErrorResponse(w, err)
		return
	}

	rides, metadata := models.Paginate(rides, page)
	if err := writeJSON(w, http.StatusOK, envelope{"rides": rides, "metadata": metadata}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ListAvailableRides godoc
// @Summary      List open ride requests
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        page_size  query     int  false  "Page size"    default(20)
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]string
// @Router       /rides/available [get]
func (h *Ride) ListAvailableRides(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_available_rides")

	page, errs := pageParam(r)
	if errs != nil {
		failedValidationResponse(w, errs)
		return
	}

	rides, err := h.service.ListAvailableRides(ctx, models.PrincipalFromContext(ctx))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list available rides", err)
		serviceErrorResponse(w, err)
		return
	}

	rides, metadata := models.Paginate(rides, page)
	if err := writeJSON(w, http.StatusOK, envelope{"rides": rides, "metadata": metadata}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetRide godoc
// @Summary      Get a ride
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.Ride
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /rides/{ride_id} [get]
func (h *Ride) GetRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride")

	rideID, err := rideIDParam(r)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	ride, err := h.service.GetRide(ctx, models.PrincipalFromContext(ctx), rideID)
	if err != nil {
		h.l.Warn(ctx, "failed to get ride", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// AcceptRide godoc
// @Summary      Accept a ride
// @Description  Only one driver can win a requested ride; the others get 409
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.Ride
// @Failure      409      {object}  map[string]string
// @Router       /rides/{ride_id}/accept [post]
func (h *Ride) AcceptRide(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept_ride", func(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
		return h.service.AcceptRide(ctx, p, rideID)
	})
}

// RejectRide godoc
// @Summary      Reject a ride
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.Ride
// @Failure      409      {object}  map[string]string
// @Router       /rides/{ride_id}/reject [post]
func (h *Ride) RejectRide(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject_ride", func(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
		return h.service.RejectRide(ctx, p, rideID)
	})
}

// AdvanceRide godoc
// @Summary      Advance a ride
// @Description  Moves an accepted ride to in_progress, or an in_progress ride to completed
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path      string                  true  "Ride ID"
// @Param        request  body      dto.AdvanceRideRequest  true  "Target status and optional fare"
// @Success      200      {object}  models.Ride
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]any
// @Router       /rides/{ride_id}/status [patch]
func (h *Ride) AdvanceRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "advance_ride")

	var req dto.AdvanceRideRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	h.transition(w, r.WithContext(ctx), "advance_ride", func(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
		return h.service.AdvanceRide(ctx, p, rideID, types.RideStatus(req.Status), req.Fare)
	})
}

// RemoveRide godoc
// @Summary      Delete a ride
// @Description  Participants only. No notification is sent.
// @Tags         Rides
// @Security     BearerAuth
// @Param        ride_id  path  string  true  "Ride ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /rides/{ride_id} [delete]
func (h *Ride) RemoveRide(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "remove_ride")

	rideID, err := rideIDParam(r)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	if err := h.service.RemoveRide(ctx, models.PrincipalFromContext(ctx), rideID); err != nil {
		h.l.Warn(ctx, "failed to remove ride", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLocation godoc
// @Summary      Latest driver position
// @Description  The most recent sample relayed for the ride, if still retained
// @Tags         Rides
// @Produce      json
// @Security     BearerAuth
// @Param        ride_id  path      string  true  "Ride ID"
// @Success      200      {object}  models.LocationSample
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /rides/{ride_id}/location [get]
func (h *Ride) GetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride_location")

	rideID, err := rideIDParam(r)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	sample, err := h.locations.Latest(ctx, models.PrincipalFromContext(ctx), rideID)
	if err != nil {
		h.l.Debug(ctx, "no location to return", "error", err.Error())
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"location": sample}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

type transitionFunc func(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error)

func (h *Ride) transition(w http.ResponseWriter, r *http.Request, action string, fn transitionFunc) {
	ctx := wrap.WithAction(r.Context(), action)

	rideID, err := rideIDParam(r)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}
	ctx = wrap.WithRideID(ctx, rideID.String())

	ride, err := fn(ctx, models.PrincipalFromContext(ctx), rideID)
	if err != nil {
		h.l.Warn(ctx, "ride transition refused", "error", err.Error(), "kind", types.KindOf(err))
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": ride}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
