package ride

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

/*=================Ride Repository======================*/

// RideRepo is the Ride Directory. Accept, Reject and Advance are guarded
// updates: they change the row only if it is still in the expected status
// (and, for Advance, still owned by driverID), otherwise they return
// types.ErrStatusMismatch. A missing ride is types.ErrRideNotFound.
type RideRepo interface {
	Create(ctx context.Context, ride *models.Ride) error
	Get(ctx context.Context, id uuid.UUID) (*models.Ride, error)
	Accept(ctx context.Context, id, driverID uuid.UUID, at time.Time) (*models.Ride, error)
	Reject(ctx context.Context, id uuid.UUID, at time.Time) (*models.Ride, error)
	Advance(ctx context.Context, id, driverID uuid.UUID, from, to types.RideStatus, fare *float64, at time.Time) (*models.Ride, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*models.Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error)
	ListByStatus(ctx context.Context, status types.RideStatus) ([]*models.Ride, error)
}

/*=================User Directory=======================*/

type UserRepo interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

/*=================Ride Event Journal===================*/

type RideEventRepo interface {
	CreateEvent(ctx context.Context, rideID uuid.UUID, eventType types.RideEvent, eventData json.RawMessage) error
}
