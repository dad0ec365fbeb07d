package rooms

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

const (
	GroupDrivers    = "drivers"
	GroupPassengers = "passengers"
)

// UserGroup is the group holding every connection of one user.
func UserGroup(id uuid.UUID) string {
	return "user:" + id.String()
}

// RoleGroup is the group holding every connection of role.
func RoleGroup(role types.UserRole) string {
	switch role {
	case types.RoleDriver:
		return GroupDrivers
	case types.RolePassenger:
		return GroupPassengers
	}
	return ""
}

type Hub interface {
	Add(client ws.Client, groups ...string) error
	Delete(id string) error
	Broadcast(msg []byte, groups ...string) ws.Stats
}

// Router owns connection membership. Groups a ride is delivered to are
// derived from the ride value at publish time and never cached on the
// connection, so they follow the ride when it changes hands.
type Router struct {
	hub Hub
}

func NewRouter(hub Hub) *Router {
	return &Router{hub: hub}
}

// Join adds an authenticated connection to its user group and role group.
func (r *Router) Join(p models.Principal, client ws.Client) error {
	if p.IsAnonymous() || !p.Role.IsValid() {
		return fmt.Errorf("%w: connection has no principal", types.ErrUnauthorized)
	}
	return r.hub.Add(client, UserGroup(p.ID), RoleGroup(p.Role))
}

// Leave drops every membership of the connection.
func (r *Router) Leave(connID string) error {
	return r.hub.Delete(connID)
}

// Deliver sends msg once to every connection in any of groups.
func (r *Router) Deliver(msg []byte, groups ...string) ws.Stats {
	return r.hub.Broadcast(msg, groups...)
}

// GroupsForRide returns the passenger group, the driver group when a driver
// is assigned and the drivers group while the ride is still requested.
func GroupsForRide(ride *models.Ride) []string {
	groups := []string{UserGroup(ride.PassengerID)}
	if ride.DriverID != nil {
		groups = append(groups, UserGroup(*ride.DriverID))
	}
	if ride.Status == types.StatusRequested {
		groups = append(groups, GroupDrivers)
	}
	return groups
}

// Audience returns the groups an event about ride is delivered to.
func Audience(kind types.EventKind, ride *models.Ride) []string {
	switch kind {
	case types.EventRideCreated:
		if ride.Status != types.StatusRequested {
			return nil
		}
		return []string{GroupDrivers}
	case types.EventRideAccepted:
		return []string{UserGroup(ride.PassengerID)}
	case types.EventRideUpdated:
		switch ride.Status {
		case types.StatusAccepted:
			// Competing drivers learn the offer is gone.
			groups := []string{GroupDrivers}
			if ride.DriverID != nil {
				groups = append(groups, UserGroup(*ride.DriverID))
			}
			return groups
		case types.StatusRejected:
			return []string{UserGroup(ride.PassengerID), GroupDrivers}
		default:
			return GroupsForRide(ride)
		}
	case types.EventLocationBroadcast:
		return []string{UserGroup(ride.PassengerID)}
	}
	return nil
}
