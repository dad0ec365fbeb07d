package relay

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/metrics"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type RideRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Ride, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*models.Ride, error)
}

// LocationStore retains the latest sample per ride.
type LocationStore interface {
	Put(ctx context.Context, sample models.LocationSample) error
	Latest(ctx context.Context, rideID uuid.UUID) (models.LocationSample, bool, error)
	Forget(ctx context.Context, rideID uuid.UUID) error
}

type Publisher interface {
	Send(ctx context.Context, kind types.EventKind, data any, groups ...string) ws.Stats
}

// Service forwards driver positions to the passenger of the ride and keeps
// the most recent one for late subscribers.
type Service struct {
	rides     RideRepo
	store     LocationStore
	publisher Publisher
	now       func() time.Time
	l         logger.Logger
}

func New(rides RideRepo, store LocationStore, publisher Publisher, l logger.Logger) *Service {
	return &Service{
		rides:     rides,
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		l:         l,
	}
}

// Relay accepts a position from sender for rideID. sender must be the
// ride's driver and the ride must be accepted or in progress. The sample
// reaches the passenger's connections only.
func (s *Service) Relay(ctx context.Context, sender models.Principal, rideID uuid.UUID, pos models.Position) (models.LocationSample, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, types.ActionLocationRelay), rideID.String())

	sample, ride, err := s.check(ctx, sender, rideID, pos)
	if err != nil {
		metrics.RecordRelay(types.KindOf(err))
		return models.LocationSample{}, wrap.Error(ctx, err)
	}

	if err := s.store.Put(ctx, sample); err != nil {
		// The live relay still goes out; only late subscribers lose this sample.
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to retain location", err)
	}

	stats := s.publisher.Send(ctx, types.EventLocationBroadcast, sample, rooms.Audience(types.EventLocationBroadcast, ride)...)
	metrics.RecordRelay("")
	s.l.Debug(ctx, "location relayed", "delivered", stats.Delivered)

	return sample, nil
}

func (s *Service) check(ctx context.Context, sender models.Principal, rideID uuid.UUID, pos models.Position) (models.LocationSample, *models.Ride, error) {
	ride, err := s.rides.Get(ctx, rideID)
	if err != nil {
		return models.LocationSample{}, nil, err
	}
	if !ride.IsDrivenBy(sender.ID) {
		return models.LocationSample{}, nil, types.ErrNotRideDriver
	}
	if !ride.Status.IsLive() {
		return models.LocationSample{}, nil, types.ErrRideNotLive
	}
	if err := ValidatePosition(pos); err != nil {
		return models.LocationSample{}, nil, err
	}

	return models.LocationSample{
		RideID:    rideID,
		Position:  pos,
		Timestamp: s.now(),
	}, ride, nil
}

// ValidatePosition checks coordinate ranges and accuracy.
func ValidatePosition(pos models.Position) error {
	switch {
	case math.IsNaN(pos.Latitude) || pos.Latitude < -90 || pos.Latitude > 90:
		return types.Validationf("latitude must be between -90 and 90")
	case math.IsNaN(pos.Longitude) || pos.Longitude < -180 || pos.Longitude > 180:
		return types.Validationf("longitude must be between -180 and 180")
	case math.IsNaN(pos.Accuracy) || pos.Accuracy < 0:
		return types.Validationf("accuracy must be a non-negative number")
	}
	return nil
}

// Latest returns the retained sample of rideID to one of its participants.
// Rides that are no longer live have no location, even if a late relay
// stored one after the ride finished.
func (s *Service) Latest(ctx context.Context, principal models.Principal, rideID uuid.UUID) (models.LocationSample, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "get_latest_location"), rideID.String())

	ride, err := s.rides.Get(ctx, rideID)
	if err != nil {
		return models.LocationSample{}, wrap.Error(ctx, err)
	}
	if !ride.IsParticipant(principal.ID) {
		return models.LocationSample{}, wrap.Error(ctx, types.ErrNotRideParticipant)
	}
	if !ride.Status.IsLive() {
		return models.LocationSample{}, wrap.Error(ctx, types.ErrNoLocation)
	}

	sample, ok, err := s.store.Latest(ctx, rideID)
	if err != nil {
		return models.LocationSample{}, wrap.Error(ctx, err)
	}
	if !ok {
		return models.LocationSample{}, wrap.Error(ctx, types.ErrNoLocation)
	}
	return sample, nil
}

// Replay sends a freshly connected passenger the retained sample of each of
// their live rides.
func (s *Service) Replay(ctx context.Context, principal models.Principal, client ws.Client) {
	if !principal.IsPassenger() {
		return
	}
	ctx = wrap.WithAction(ctx, "replay_location")

	rides, err := s.rides.ListByPassenger(ctx, principal.ID)
	if err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to list rides for replay", err)
		return
	}

	for _, ride := range rides {
		if !ride.Status.IsLive() {
			continue
		}
		sample, ok, err := s.store.Latest(ctx, ride.ID)
		if err != nil {
			s.l.Warn(ctx, "failed to read retained location", "ride_id", ride.ID, "error", err.Error())
			continue
		}
		if !ok {
			continue
		}
		msg, err := models.EncodeEvent(types.EventLocationBroadcast, sample)
		if err != nil {
			continue
		}
		if err := client.Send(msg); err != nil {
			s.l.Warn(ctx, "failed to replay location", "ride_id", ride.ID, "error", err.Error())
			return
		}
	}
}

// Forget drops the retained sample once a ride no longer moves.
func (s *Service) Forget(ctx context.Context, rideID uuid.UUID) {
	if err := s.store.Forget(ctx, rideID); err != nil {
		ctx = wrap.WithRideID(wrap.WithAction(ctx, "forget_location"), rideID.String())
		s.l.Warn(ctx, "failed to forget location", "error", err.Error())
	}
}
