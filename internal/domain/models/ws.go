package models

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// Envelope is the frame of every websocket message in both directions.
type Envelope struct {
	Event types.EventKind `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent marshals data into an Envelope of kind.
func EncodeEvent(kind types.EventKind, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: kind, Data: raw})
}

// ErrorEvent is sent to a single connection when its request failed.
type ErrorEvent struct {
	Kind    string     `json:"kind"`
	Message string     `json:"message"`
	RideID  *uuid.UUID `json:"ride_id,omitempty"`
}
