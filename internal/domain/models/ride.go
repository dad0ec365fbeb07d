package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// Location is an immutable pickup or drop point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// UserSummary is the public projection of a ride participant.
type UserSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Vehicle string    `json:"vehicle,omitempty"`
}

type Ride struct {
	ID          uuid.UUID        `json:"id"`
	PassengerID uuid.UUID        `json:"passenger_id"`
	DriverID    *uuid.UUID       `json:"driver_id"`
	Pickup      Location         `json:"pickup"`
	Drop        Location         `json:"drop"`
	Class       types.RideClass  `json:"ride_class"`
	Status      types.RideStatus `json:"status"`
	Fare        *float64         `json:"fare"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Resolved from the user directory, never stored with the ride.
	Passenger *UserSummary `json:"passenger,omitempty"`
	Driver    *UserSummary `json:"driver,omitempty"`
}

// IsDrivenBy reports whether userID is the assigned driver.
func (r *Ride) IsDrivenBy(userID uuid.UUID) bool {
	return r.DriverID != nil && *r.DriverID == userID
}

// IsParticipant reports whether userID is the passenger or the assigned driver.
func (r *Ride) IsParticipant(userID uuid.UUID) bool {
	return r.PassengerID == userID || r.IsDrivenBy(userID)
}

// Clone returns a deep copy so callers never share pointers with storage.
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	c := *r
	if r.DriverID != nil {
		id := *r.DriverID
		c.DriverID = &id
	}
	if r.Fare != nil {
		f := *r.Fare
		c.Fare = &f
	}
	c.AcceptedAt = cloneTime(r.AcceptedAt)
	c.StartedAt = cloneTime(r.StartedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	if r.Passenger != nil {
		p := *r.Passenger
		c.Passenger = &p
	}
	if r.Driver != nil {
		d := *r.Driver
		c.Driver = &d
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// RideStatusUpdateMessage mirrors a ride transition to external brokers.
type RideStatusUpdateMessage struct {
	RideID        uuid.UUID        `json:"ride_id"`
	PassengerID   uuid.UUID        `json:"passenger_id"`
	DriverID      *uuid.UUID       `json:"driver_id,omitempty"`
	Status        types.RideStatus `json:"status"`
	Event         types.RideEvent  `json:"event"`
	Class         types.RideClass  `json:"ride_class"`
	Fare          *float64         `json:"fare,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	CorrelationID string           `json:"correlation_id,omitempty"`
}

func NewRideStatusUpdateMessage(ride *Ride, correlationID string) RideStatusUpdateMessage {
	return RideStatusUpdateMessage{
		RideID:        ride.ID,
		PassengerID:   ride.PassengerID,
		DriverID:      ride.DriverID,
		Status:        ride.Status,
		Event:         types.JournalEventFor(ride.Status),
		Class:         ride.Class,
		Fare:          ride.Fare,
		Timestamp:     ride.UpdatedAt,
		CorrelationID: correlationID,
	}
}
