package types

// Log actions shared by more than one package.
const (
	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionMirror                    = "mirror_ride_status"
	ActionDispatch                  = "dispatch_event"
	ActionLocationRelay             = "relay_location"
)
