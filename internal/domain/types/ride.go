package types

// RideStatus is the authoritative lifecycle state of a ride.
type RideStatus string

const (
	StatusRequested  RideStatus = "requested"
	StatusAccepted   RideStatus = "accepted"
	StatusRejected   RideStatus = "rejected"
	StatusInProgress RideStatus = "in_progress"
	StatusCompleted  RideStatus = "completed"
)

func (s RideStatus) String() string { return string(s) }

func (s RideStatus) IsValid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusRejected, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RideStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// HasDriver reports whether a ride in status s must carry a driver.
func (s RideStatus) HasDriver() bool {
	return s == StatusAccepted || s == StatusInProgress || s == StatusCompleted
}

// IsLive reports whether the driver is on the way or driving.
func (s RideStatus) IsLive() bool {
	return s == StatusAccepted || s == StatusInProgress
}

// Next returns the single driver-driven successor of s, if any.
// requested has two successors (accept/reject) and is handled separately.
func (s RideStatus) Next() (RideStatus, bool) {
	switch s {
	case StatusAccepted:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusCompleted, true
	}
	return "", false
}

// CanTransition reports whether from -> to is an edge of the ride lifecycle.
func CanTransition(from, to RideStatus) bool {
	switch from {
	case StatusRequested:
		return to == StatusAccepted || to == StatusRejected
	default:
		next, ok := from.Next()
		return ok && next == to
	}
}

// RideClass is the requested vehicle category.
type RideClass string

const (
	ClassBike     RideClass = "bike"
	ClassCar      RideClass = "car"
	ClassRickshaw RideClass = "rickshaw"
)

func (c RideClass) String() string { return string(c) }

func (c RideClass) IsValid() bool {
	return c == ClassBike || c == ClassCar || c == ClassRickshaw
}

// RideClasses lists every supported class.
func RideClasses() []string {
	return []string{ClassBike.String(), ClassCar.String(), ClassRickshaw.String()}
}
