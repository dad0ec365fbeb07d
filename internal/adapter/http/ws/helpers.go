package wshandler

import (
	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

// errorResponse reports a failed request to the sending connection only.
func errorResponse(conn ws.Client, err error, rideID *uuid.UUID) error {
	msg, encErr := models.EncodeEvent(types.EventError, models.ErrorEvent{
		Kind:    types.KindOf(err),
		Message: err.Error(),
		RideID:  rideID,
	})
	if encErr != nil {
		return encErr
	}
	return conn.Send(msg)
}
