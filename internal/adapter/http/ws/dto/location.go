package dto

import (
	"math"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/pkg/validator"
)

// LocationUpdateRequest is the payload of an inbound location:update frame.
type LocationUpdateRequest struct {
	RideID   uuid.UUID        `json:"ride_id"`
	Position *PositionRequest `json:"position"`
}

type PositionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

func (r *LocationUpdateRequest) Validate(v *validator.Validator) {
	v.Check(r.RideID != uuid.Nil, "ride_id", "must be provided")
	if r.Position == nil {
		v.AddError("position", "must be provided")
		return
	}

	p := r.Position
	v.Check(p.Latitude != nil, "position.latitude", "must be provided")
	v.Check(p.Longitude != nil, "position.longitude", "must be provided")
	if p.Latitude != nil {
		v.Check(validator.Between(*p.Latitude, -90.0, 90.0), "position.latitude", "must be between -90 and 90")
	}
	if p.Longitude != nil {
		v.Check(validator.Between(*p.Longitude, -180.0, 180.0), "position.longitude", "must be between -180 and 180")
	}
	v.Check(!math.IsNaN(p.Accuracy) && p.Accuracy >= 0, "position.accuracy", "must be a non-negative number")
}

// ToModel must only be called on a validated request.
func (r *LocationUpdateRequest) ToModel() models.Position {
	return models.Position{
		Latitude:  *r.Position.Latitude,
		Longitude: *r.Position.Longitude,
		Accuracy:  r.Position.Accuracy,
	}
}
