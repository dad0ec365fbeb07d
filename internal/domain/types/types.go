package types

// UserRole is the role carried by an authenticated principal.
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RolePassenger UserRole = "passenger"
	RoleDriver    UserRole = "driver"
)

func (r UserRole) IsValid() bool {
	return r == RolePassenger || r == RoleDriver
}

// Availability applies to drivers only.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

func (a Availability) Toggle() Availability {
	if a == Available {
		return Unavailable
	}
	return Available
}

// StorageDriver selects the ride and user directory backend.
type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

// LocationStore selects where the latest position sample is retained.
type LocationStore string

const (
	LocationMemory LocationStore = "memory"
	LocationRedis  LocationStore = "redis"
)

// EventSink names an external broker that mirrors ride events.
type EventSink string

const (
	SinkRabbitMQ EventSink = "rabbitmq"
	SinkKafka    EventSink = "kafka"
)
