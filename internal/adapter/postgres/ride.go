package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/postgres"
)

type RideRepo struct {
	db *pgxpool.Pool
}

func NewRideRepo(db *pgxpool.Pool) *RideRepo {
	return &RideRepo{db: db}
}

const rideColumns = `
	id, passenger_id, driver_id,
	pickup_lat, pickup_lng, pickup_label,
	drop_lat, drop_lng, drop_label,
	ride_class, status, fare,
	created_at, updated_at, accepted_at, started_at, completed_at`

func scanRide(row pgx.Row) (*models.Ride, error) {
	var (
		ride   models.Ride
		class  string
		status string
	)
	err := row.Scan(
		&ride.ID, &ride.PassengerID, &ride.DriverID,
		&ride.Pickup.Latitude, &ride.Pickup.Longitude, &ride.Pickup.Label,
		&ride.Drop.Latitude, &ride.Drop.Longitude, &ride.Drop.Label,
		&class, &status, &ride.Fare,
		&ride.CreatedAt, &ride.UpdatedAt, &ride.AcceptedAt, &ride.StartedAt, &ride.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	ride.Class = types.RideClass(class)
	ride.Status = types.RideStatus(status)
	return &ride, nil
}

func (r *RideRepo) Create(ctx context.Context, ride *models.Ride) error {
	const op = "RideRepo.Create"
	q := conn(ctx, r.db)

	if ride.ID == uuid.Nil {
		ride.ID = uuid.New()
	}

	query := `
		INSERT INTO rides (
			id, passenger_id, driver_id,
			pickup_lat, pickup_lng, pickup_label,
			drop_lat, drop_lng, drop_label,
			ride_class, status, created_at, updated_at)
		VALUES ($1, $2, NULL, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at;`

	createdAt := ride.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := q.QueryRow(ctx, query,
		ride.ID, ride.PassengerID,
		ride.Pickup.Latitude, ride.Pickup.Longitude, ride.Pickup.Label,
		ride.Drop.Latitude, ride.Drop.Longitude, ride.Drop.Label,
		ride.Class.String(), ride.Status.String(), createdAt,
	).Scan(&ride.CreatedAt, &ride.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, types.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RideRepo) Get(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	const op = "RideRepo.Get"
	q := conn(ctx, r.db)

	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1;`

	ride, err := scanRide(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRideNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ride, nil
}

// Accept sets driver and status in one statement, only while the ride is requested.
func (r *RideRepo) Accept(ctx context.Context, id, driverID uuid.UUID, at time.Time) (*models.Ride, error) {
	query := `
		UPDATE rides
		SET driver_id = $2, status = 'accepted', accepted_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'requested'
		RETURNING ` + rideColumns + `;`

	return r.guarded(ctx, "RideRepo.Accept", id, query, id, driverID, at)
}

func (r *RideRepo) Reject(ctx context.Context, id uuid.UUID, at time.Time) (*models.Ride, error) {
	query := `
		UPDATE rides
		SET status = 'rejected', updated_at = $2
		WHERE id = $1 AND status = 'requested'
		RETURNING ` + rideColumns + `;`

	return r.guarded(ctx, "RideRepo.Reject", id, query, id, at)
}

// Advance moves the ride from one status to the next if driverID still owns it.
func (r *RideRepo) Advance(ctx context.Context, id, driverID uuid.UUID, from, to types.RideStatus, fare *float64, at time.Time) (*models.Ride, error) {
	query := `
		UPDATE rides
		SET status       = $4,
		    fare         = COALESCE($5::double precision, fare),
		    started_at   = CASE WHEN $4 = 'in_progress' THEN $6 ELSE started_at END,
		    completed_at = CASE WHEN $4 = 'completed' THEN $6 ELSE completed_at END,
		    updated_at   = $6
		WHERE id = $1 AND driver_id = $2 AND status = $3
		RETURNING ` + rideColumns + `;`

	return r.guarded(ctx, "RideRepo.Advance", id, query, id, driverID, from.String(), to.String(), fare, at)
}

// guarded runs a conditional update. No returned row means the ride is
// either gone or no longer in the expected state.
func (r *RideRepo) guarded(ctx context.Context, op string, id uuid.UUID, query string, args ...any) (*models.Ride, error) {
	q := conn(ctx, r.db)

	ride, err := scanRide(q.QueryRow(ctx, query, args...))
	if err == nil {
		return ride, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if postgres.IsCheckViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, types.ErrStatusMismatch)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1);`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, types.ErrRideNotFound
	}
	return nil, types.ErrStatusMismatch
}

func (r *RideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "RideRepo.Delete"
	q := conn(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM rides WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRideNotFound
	}
	return nil
}

func (r *RideRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE passenger_id = $1 ORDER BY created_at DESC;`
	return r.list(ctx, "RideRepo.ListByPassenger", query, passengerID)
}

func (r *RideRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC;`
	return r.list(ctx, "RideRepo.ListByDriver", query, driverID)
}

func (r *RideRepo) ListByStatus(ctx context.Context, status types.RideStatus) ([]*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY created_at DESC;`
	return r.list(ctx, "RideRepo.ListByStatus", query, status.String())
}

func (r *RideRepo) list(ctx context.Context, op, query string, args ...any) ([]*models.Ride, error) {
	q := conn(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rides, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Ride, error) {
		return scanRide(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rides, nil
}
