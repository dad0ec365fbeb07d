package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// JournalEntry is one recorded ride event.
type JournalEntry struct {
	RideID    uuid.UUID
	Type      types.RideEvent
	Data      json.RawMessage
	CreatedAt time.Time
}

// RideEventRepo is an append-only in-process journal.
type RideEventRepo struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func NewRideEventRepo() *RideEventRepo {
	return &RideEventRepo{}
}

func (r *RideEventRepo) CreateEvent(_ context.Context, rideID uuid.UUID, eventType types.RideEvent, eventData json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, JournalEntry{
		RideID:    rideID,
		Type:      eventType,
		Data:      append(json.RawMessage(nil), eventData...),
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Events returns the journal of rideID in insertion order.
func (r *RideEventRepo) Events(rideID uuid.UUID) []JournalEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]JournalEntry, 0)
	for _, e := range r.entries {
		if e.RideID == rideID {
			out = append(out, e)
		}
	}
	return out
}
