package ride

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/trm"
)

const maxLabelLen = 255

/*
Service is the ride state machine. It owns the authoritative status of
every ride and never talks to connections: callers publish the returned ride.
*/
type Service struct {
	repos repos
	trm   trm.TxManager
	now   func() time.Time
	l     logger.Logger
}

type repos struct {
	ride  RideRepo
	user  UserRepo
	event RideEventRepo
}

func New(rideRepo RideRepo, userRepo UserRepo, eventRepo RideEventRepo, trm trm.TxManager, l logger.Logger) *Service {
	return &Service{
		repos: repos{
			ride:  rideRepo,
			user:  userRepo,
			event: eventRepo,
		},
		trm: trm,
		now: func() time.Time { return time.Now().UTC() },
		l:   l,
	}
}

// Create opens a ride in status requested for passenger.
func (s *Service) Create(ctx context.Context, passenger models.Principal, pickup, drop models.Location, class types.RideClass) (*models.Ride, error) {
	ctx = wrap.WithAction(ctx, "create_ride")

	if !passenger.IsPassenger() {
		return nil, wrap.Error(ctx, types.ErrRoleNotAllowed)
	}
	if err := validateRequest(pickup, drop, class); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	now := s.now()
	ride := &models.Ride{
		ID:          uuid.New(),
		PassengerID: passenger.ID,
		Pickup:      pickup,
		Drop:        drop,
		Class:       class,
		Status:      types.StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx = wrap.WithRideID(ctx, ride.ID.String())

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.repos.ride.Create(ctx, ride); err != nil {
			return fmt.Errorf("failed to create ride: %w", err)
		}
		return s.journal(ctx, ride, passenger.ID)
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "ride requested", "ride_class", class)
	return s.withSummaries(ctx, ride), nil
}

// Get returns a ride the principal is allowed to see: passengers see their
// own rides, drivers see rides they drive and any ride still requested.
func (s *Service) Get(ctx context.Context, principal models.Principal, rideID uuid.UUID) (*models.Ride, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "get_ride"), rideID.String())

	ride, err := s.repos.ride.Get(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if !canView(principal, ride) {
		return nil, wrap.Error(ctx, types.ErrNotRideParticipant)
	}

	return s.withSummaries(ctx, ride), nil
}

func canView(p models.Principal, ride *models.Ride) bool {
	switch {
	case p.IsPassenger():
		return ride.PassengerID == p.ID
	case p.IsDriver():
		return ride.IsDrivenBy(p.ID) || ride.Status == types.StatusRequested
	default:
		return false
	}
}

// ListMine returns the rides the principal takes part in, newest first.
func (s *Service) ListMine(ctx context.Context, principal models.Principal) ([]*models.Ride, error) {
	ctx = wrap.WithAction(ctx, "list_my_rides")

	var (
		rides []*models.Ride
		err   error
	)
	switch {
	case principal.IsPassenger():
		rides, err = s.repos.ride.ListByPassenger(ctx, principal.ID)
	case principal.IsDriver():
		rides, err = s.repos.ride.ListByDriver(ctx, principal.ID)
	default:
		return nil, wrap.Error(ctx, types.ErrRoleNotAllowed)
	}
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to list rides: %w", err))
	}

	return s.withSummariesAll(ctx, rides), nil
}

// ListAvailable returns every requested ride, newest first. Drivers only.
func (s *Service) ListAvailable(ctx context.Context, principal models.Principal) ([]*models.Ride, error) {
	ctx = wrap.WithAction(ctx, "list_available_rides")

	if !principal.IsDriver() {
		return nil, wrap.Error(ctx, types.ErrRoleNotAllowed)
	}

	rides, err := s.repos.ride.ListByStatus(ctx, types.StatusRequested)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to list available rides: %w", err))
	}

	return s.withSummariesAll(ctx, rides), nil
}

func validateRequest(pickup, drop models.Location, class types.RideClass) error {
	if !class.IsValid() {
		return types.Validationf("ride_class must be one of %s", strings.Join(types.RideClasses(), ", "))
	}
	if err := validateLocation("pickup", pickup); err != nil {
		return err
	}
	return validateLocation("drop", drop)
}

func validateLocation(name string, loc models.Location) error {
	switch {
	case math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90:
		return types.Validationf("%s latitude must be between -90 and 90", name)
	case math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180:
		return types.Validationf("%s longitude must be between -180 and 180", name)
	case len(loc.Label) > maxLabelLen:
		return types.Validationf("%s label must not be more than %d characters long", name, maxLabelLen)
	}
	return nil
}

// journal records the ride's current status in the event journal.
func (s *Service) journal(ctx context.Context, ride *models.Ride, actor uuid.UUID) error {
	data, err := json.Marshal(map[string]any{
		"actor_id": actor,
		"status":   ride.Status,
		"fare":     ride.Fare,
	})
	if err != nil {
		return fmt.Errorf("failed to encode ride event: %w", err)
	}
	if err := s.repos.event.CreateEvent(ctx, ride.ID, types.JournalEventFor(ride.Status), data); err != nil {
		return fmt.Errorf("failed to record ride event: %w", err)
	}
	return nil
}

// withSummaries resolves passenger and driver summaries. A missing user
// leaves only the id in the summary.
func (s *Service) withSummaries(ctx context.Context, ride *models.Ride) *models.Ride {
	ride.Passenger = s.summary(ctx, ride.PassengerID)
	if ride.DriverID != nil {
		ride.Driver = s.summary(ctx, *ride.DriverID)
	} else {
		ride.Driver = nil
	}
	return ride
}

func (s *Service) withSummariesAll(ctx context.Context, rides []*models.Ride) []*models.Ride {
	for _, r := range rides {
		s.withSummaries(ctx, r)
	}
	return rides
}

func (s *Service) summary(ctx context.Context, id uuid.UUID) *models.UserSummary {
	u, err := s.repos.user.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			s.l.Warn(ctx, "failed to resolve user summary", "user_id", id, "error", err.Error())
		}
		return &models.UserSummary{ID: id}
	}
	return u.Summary()
}
