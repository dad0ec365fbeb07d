package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type RideMachine interface {
	Create(ctx context.Context, passenger models.Principal, pickup, drop models.Location, class types.RideClass) (*models.Ride, error)
	Get(ctx context.Context, principal models.Principal, rideID uuid.UUID) (*models.Ride, error)
	ListMine(ctx context.Context, principal models.Principal) ([]*models.Ride, error)
	ListAvailable(ctx context.Context, principal models.Principal) ([]*models.Ride, error)
	Accept(ctx context.Context, rideID uuid.UUID, driver models.Principal) (*models.Ride, error)
	Reject(ctx context.Context, rideID uuid.UUID, driver models.Principal) (*models.Ride, error)
	Advance(ctx context.Context, rideID uuid.UUID, driver models.Principal, target types.RideStatus, fare *float64) (*models.Ride, error)
	Remove(ctx context.Context, rideID uuid.UUID, principal models.Principal) (*models.Ride, error)
}

type Dispatcher interface {
	Publish(ctx context.Context, kind types.EventKind, ride *models.Ride) ws.Stats
	Mirror(ctx context.Context, ride *models.Ride)
}

type LocationForgetter interface {
	Forget(ctx context.Context, rideID uuid.UUID)
}

type UserRepo interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetAvailability(ctx context.Context, id uuid.UUID, availability types.Availability) (*models.User, error)
}

/*
Service is what the API layer talks to. Every successful ride transition is
followed by its notifications; the state machine itself never publishes.
*/
type Service struct {
	rides      RideMachine
	dispatcher Dispatcher
	locations  LocationForgetter
	users      UserRepo
	l          logger.Logger
}

func New(rides RideMachine, dispatcher Dispatcher, locations LocationForgetter, users UserRepo, l logger.Logger) *Service {
	return &Service{
		rides:      rides,
		dispatcher: dispatcher,
		locations:  locations,
		users:      users,
		l:          l,
	}
}

func (s *Service) CreateRide(ctx context.Context, p models.Principal, pickup, drop models.Location, class types.RideClass) (*models.Ride, error) {
	ride, err := s.rides.Create(ctx, p, pickup, drop, class)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, types.EventRideCreated, ride)
	s.dispatcher.Mirror(ctx, ride)
	return ride, nil
}

func (s *Service) GetRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
	return s.rides.Get(ctx, p, rideID)
}

func (s *Service) ListMyRides(ctx context.Context, p models.Principal) ([]*models.Ride, error) {
	return s.rides.ListMine(ctx, p)
}

func (s *Service) ListAvailableRides(ctx context.Context, p models.Principal) ([]*models.Ride, error) {
	return s.rides.ListAvailable(ctx, p)
}

// AcceptRide tells the passenger first, then withdraws the offer from the
// other drivers.
func (s *Service) AcceptRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := s.rides.Accept(ctx, rideID, p)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, types.EventRideAccepted, ride)
	s.dispatcher.Publish(ctx, types.EventRideUpdated, ride)
	s.dispatcher.Mirror(ctx, ride)
	return ride, nil
}

func (s *Service) RejectRide(ctx context.Context, p models.Principal, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := s.rides.Reject(ctx, rideID, p)
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, types.EventRideUpdated, ride)
	s.dispatcher.Mirror(ctx, ride)
	return ride, nil
}

func (s *Service) AdvanceRide(ctx context.Context, p models.Principal, rideID uuid.UUID, target types.RideStatus, fare *float64) (*models.Ride, error) {
	ride, err := s.rides.Advance(ctx, rideID, p, target, fare)
	if err != nil {
		return nil, err
	}

	if ride.Status.IsTerminal() {
		s.locations.Forget(ctx, ride.ID)
	}
	s.dispatcher.Publish(ctx, types.EventRideUpdated, ride)
	s.dispatcher.Mirror(ctx, ride)
	return ride, nil
}

// RemoveRide deletes the ride. Nobody is notified.
func (s *Service) RemoveRide(ctx context.Context, p models.Principal, rideID uuid.UUID) error {
	ride, err := s.rides.Remove(ctx, rideID, p)
	if err != nil {
		return err
	}

	s.locations.Forget(ctx, ride.ID)
	return nil
}

// GetAvailability returns the driver's current availability.
func (s *Service) GetAvailability(ctx context.Context, p models.Principal) (types.Availability, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "get_availability"), p.ID.String())

	if !p.IsDriver() {
		return "", wrap.Error(ctx, types.ErrRoleNotAllowed)
	}

	user, err := s.users.GetUser(ctx, p.ID)
	if err != nil {
		return "", wrap.Error(ctx, err)
	}
	if user.Availability == "" {
		return types.Unavailable, nil
	}
	return user.Availability, nil
}

// ToggleAvailability flips the driver between available and unavailable.
func (s *Service) ToggleAvailability(ctx context.Context, p models.Principal) (types.Availability, error) {
	current, err := s.GetAvailability(ctx, p)
	if err != nil {
		return "", err
	}

	ctx = wrap.WithUserID(wrap.WithAction(ctx, "toggle_availability"), p.ID.String())
	user, err := s.users.SetAvailability(ctx, p.ID, current.Toggle())
	if err != nil {
		return "", wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "driver availability changed", "availability", user.Availability)
	return user.Availability, nil
}
