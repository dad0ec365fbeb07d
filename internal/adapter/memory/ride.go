package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// RideRepo is an in-process Ride Directory. Every method is atomic, so the
// guarded updates give the same at-most-one-winner guarantee as the SQL ones.
type RideRepo struct {
	mu    sync.RWMutex
	rides map[uuid.UUID]*models.Ride
}

func NewRideRepo() *RideRepo {
	return &RideRepo{rides: make(map[uuid.UUID]*models.Ride)}
}

func (r *RideRepo) Create(_ context.Context, ride *models.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ride.ID == uuid.Nil {
		ride.ID = uuid.New()
	}
	now := time.Now().UTC()
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = now
	}
	ride.UpdatedAt = ride.CreatedAt

	stored := ride.Clone()
	stored.Passenger, stored.Driver = nil, nil
	r.rides[ride.ID] = stored
	return nil
}

func (r *RideRepo) Get(_ context.Context, id uuid.UUID) (*models.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, types.ErrRideNotFound
	}
	return ride.Clone(), nil
}

// update applies fn to the stored ride when guard holds.
func (r *RideRepo) update(id uuid.UUID, guard func(*models.Ride) bool, fn func(*models.Ride)) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, types.ErrRideNotFound
	}
	if !guard(ride) {
		return nil, types.ErrStatusMismatch
	}
	fn(ride)
	return ride.Clone(), nil
}

func (r *RideRepo) Accept(_ context.Context, id, driverID uuid.UUID, at time.Time) (*models.Ride, error) {
	return r.update(id,
		func(ride *models.Ride) bool { return ride.Status == types.StatusRequested },
		func(ride *models.Ride) {
			d := driverID
			ride.DriverID = &d
			ride.Status = types.StatusAccepted
			ride.AcceptedAt = &at
			ride.UpdatedAt = at
		})
}

func (r *RideRepo) Reject(_ context.Context, id uuid.UUID, at time.Time) (*models.Ride, error) {
	return r.update(id,
		func(ride *models.Ride) bool { return ride.Status == types.StatusRequested },
		func(ride *models.Ride) {
			ride.Status = types.StatusRejected
			ride.UpdatedAt = at
		})
}

func (r *RideRepo) Advance(_ context.Context, id, driverID uuid.UUID, from, to types.RideStatus, fare *float64, at time.Time) (*models.Ride, error) {
	return r.update(id,
		func(ride *models.Ride) bool { return ride.Status == from && ride.IsDrivenBy(driverID) },
		func(ride *models.Ride) {
			ride.Status = to
			ride.UpdatedAt = at
			switch to {
			case types.StatusInProgress:
				ride.StartedAt = &at
			case types.StatusCompleted:
				ride.CompletedAt = &at
			}
			if fare != nil {
				f := *fare
				ride.Fare = &f
			}
		})
}

func (r *RideRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rides[id]; !ok {
		return types.ErrRideNotFound
	}
	delete(r.rides, id)
	return nil
}

func (r *RideRepo) ListByPassenger(_ context.Context, passengerID uuid.UUID) ([]*models.Ride, error) {
	return r.list(func(ride *models.Ride) bool { return ride.PassengerID == passengerID }), nil
}

func (r *RideRepo) ListByDriver(_ context.Context, driverID uuid.UUID) ([]*models.Ride, error) {
	return r.list(func(ride *models.Ride) bool { return ride.IsDrivenBy(driverID) }), nil
}

func (r *RideRepo) ListByStatus(_ context.Context, status types.RideStatus) ([]*models.Ride, error) {
	return r.list(func(ride *models.Ride) bool { return ride.Status == status }), nil
}

// list returns matching rides, newest first.
func (r *RideRepo) list(match func(*models.Ride) bool) []*models.Ride {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Ride, 0)
	for _, ride := range r.rides {
		if match(ride) {
			out = append(out, ride.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
