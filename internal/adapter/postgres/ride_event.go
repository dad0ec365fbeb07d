package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

type RideEvent struct {
	db *pgxpool.Pool
}

func NewRideEvent(db *pgxpool.Pool) *RideEvent {
	return &RideEvent{db: db}
}

// CreateEvent appends a row to the ride journal.
func (r *RideEvent) CreateEvent(ctx context.Context, rideID uuid.UUID, eventType types.RideEvent, eventData json.RawMessage) error {
	const op = "RideEvent.CreateEvent"
	q := conn(ctx, r.db)

	if len(eventData) == 0 {
		eventData = json.RawMessage(`{}`)
	}

	query := `INSERT INTO ride_events (ride_id, event_type, event_data)
			  VALUES ($1, $2, $3);`

	if _, err := q.Exec(ctx, query, rideID, eventType.String(), eventData); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
