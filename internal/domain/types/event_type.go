package types

// EventKind names a message exchanged over a persistent connection.
type EventKind string

func (k EventKind) String() string { return string(k) }

const (
	EventRideCreated       EventKind = "ride:created"
	EventRideAccepted      EventKind = "ride:accepted"
	EventRideUpdated       EventKind = "ride:updated"
	EventLocationUpdate    EventKind = "location:update"
	EventLocationBroadcast EventKind = "location:broadcast"
	EventError             EventKind = "error"
)

// RideEvent is a row type of the ride event journal.
type RideEvent string

func (s RideEvent) String() string {
	return string(s)
}

const (
	JournalRideRequested RideEvent = "RIDE_REQUESTED"
	JournalRideAccepted  RideEvent = "RIDE_ACCEPTED"
	JournalRideRejected  RideEvent = "RIDE_REJECTED"
	JournalRideStarted   RideEvent = "RIDE_STARTED"
	JournalRideCompleted RideEvent = "RIDE_COMPLETED"
)

// JournalEventFor returns the journal row type recorded when a ride enters status.
func JournalEventFor(status RideStatus) RideEvent {
	switch status {
	case StatusAccepted:
		return JournalRideAccepted
	case StatusRejected:
		return JournalRideRejected
	case StatusInProgress:
		return JournalRideStarted
	case StatusCompleted:
		return JournalRideCompleted
	default:
		return JournalRideRequested
	}
}
