package dto

import (
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/validator"
)

type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Label     string   `json:"label"`
}

func (l *LocationRequest) validate(v *validator.Validator, field string) {
	v.Check(l.Latitude != nil, field+".latitude", "must be provided")
	v.Check(l.Longitude != nil, field+".longitude", "must be provided")
	if l.Latitude != nil {
		v.Check(validator.Between(*l.Latitude, -90.0, 90.0), field+".latitude", "must be between -90 and 90")
	}
	if l.Longitude != nil {
		v.Check(validator.Between(*l.Longitude, -180.0, 180.0), field+".longitude", "must be between -180 and 180")
	}
	v.Check(len(l.Label) <= 255, field+".label", "must not be more than 255 characters long")
}

func (l *LocationRequest) ToModel() models.Location {
	var loc models.Location
	if l.Latitude != nil {
		loc.Latitude = *l.Latitude
	}
	if l.Longitude != nil {
		loc.Longitude = *l.Longitude
	}
	loc.Label = l.Label
	return loc
}

type CreateRideRequest struct {
	Pickup    LocationRequest `json:"pickup"`
	Drop      LocationRequest `json:"drop"`
	RideClass string          `json:"ride_class"`
}

func (r *CreateRideRequest) Validate(v *validator.Validator) {
	r.Pickup.validate(v, "pickup")
	r.Drop.validate(v, "drop")

	v.Check(r.RideClass != "", "ride_class", "must be provided")
	if r.RideClass != "" {
		v.Check(validator.PermittedValue(r.RideClass, types.RideClasses()...), "ride_class", "must be one of bike, car or rickshaw")
	}
}

type AdvanceRideRequest struct {
	Status string   `json:"status"`
	Fare   *float64 `json:"fare"`
}

func (r *AdvanceRideRequest) Validate(v *validator.Validator) {
	v.Check(r.Status != "", "status", "must be provided")
	if r.Status != "" {
		v.Check(validator.PermittedValue(r.Status, types.StatusInProgress.String(), types.StatusCompleted.String()), "status", "must be one of in_progress or completed")
	}
	if r.Fare != nil {
		v.Check(*r.Fare >= 0, "fare", "must not be negative")
		v.Check(r.Status == types.StatusCompleted.String(), "fare", "may only be set when completing a ride")
	}
}
