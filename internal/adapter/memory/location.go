package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
)

// LocationStore keeps the latest sample per ride. Entries older than ttl are
// dropped when read and swept on every Put.
type LocationStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	samples map[uuid.UUID]models.LocationSample
}

func NewLocationStore(ttl time.Duration) *LocationStore {
	return &LocationStore{
		ttl:     ttl,
		samples: make(map[uuid.UUID]models.LocationSample),
	}
}

// Put stores sample unless a newer one is already present.
func (s *LocationStore) Put(_ context.Context, sample models.LocationSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, cur := range s.samples {
		if s.expired(cur, now) {
			delete(s.samples, id)
		}
	}

	if cur, ok := s.samples[sample.RideID]; ok && cur.Timestamp.After(sample.Timestamp) {
		return nil
	}
	s.samples[sample.RideID] = sample
	return nil
}

func (s *LocationStore) Latest(_ context.Context, rideID uuid.UUID) (models.LocationSample, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample, ok := s.samples[rideID]
	if !ok {
		return models.LocationSample{}, false, nil
	}
	if s.expired(sample, time.Now()) {
		delete(s.samples, rideID)
		return models.LocationSample{}, false, nil
	}
	return sample, true, nil
}

// Len reports how many samples are held, expired ones included.
func (s *LocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

func (s *LocationStore) expired(sample models.LocationSample, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sample.Timestamp) > s.ttl
}

func (s *LocationStore) Forget(_ context.Context, rideID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.samples, rideID)
	return nil
}
