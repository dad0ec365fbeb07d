package models

import (
	"time"

	"github.com/google/uuid"
)

// Position is a single GPS reading.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// LocationSample is a position relayed for a ride. Only the latest one per ride is kept.
type LocationSample struct {
	RideID    uuid.UUID `json:"ride_id"`
	Position  Position  `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}
