package ride

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/metrics"
)

// Accept assigns driver to a requested ride. The storage update is
// conditional on status = requested, so among concurrent accepters exactly
// one succeeds and the others get a conflict.
func (s *Service) Accept(ctx context.Context, rideID uuid.UUID, driver models.Principal) (*models.Ride, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "accept_ride"), rideID.String())

	if !driver.IsDriver() {
		return nil, wrap.Error(ctx, types.ErrRoleNotAllowed)
	}

	var ride *models.Ride
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		ride, err = s.repos.ride.Accept(ctx, rideID, driver.ID, s.now())
		if err != nil {
			if errors.Is(err, types.ErrStatusMismatch) {
				return types.ErrRideAlreadyTaken
			}
			return err
		}
		return s.journal(ctx, ride, driver.ID)
	})
	metrics.RecordTransition(types.StatusAccepted.String(), err)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "ride accepted", "driver_id", driver.ID)
	return s.withSummaries(ctx, ride), nil
}

// Reject closes a requested ride without assigning a driver.
// Any driver may reject; a ride that already left requested cannot be rejected.
func (s *Service) Reject(ctx context.Context, rideID uuid.UUID, driver models.Principal) (*models.Ride, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "reject_ride"), rideID.String())

	if !driver.IsDriver() {
		return nil, wrap.Error(ctx, types.ErrRoleNotAllowed)
	}

	var ride *models.Ride
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		ride, err = s.repos.ride.Reject(ctx, rideID, s.now())
		if err != nil {
			if errors.Is(err, types.ErrStatusMismatch) {
				return types.Transitionf("only requested rides can be rejected")
			}
			return err
		}
		return s.journal(ctx, ride, driver.ID)
	})
	metrics.RecordTransition(types.StatusRejected.String(), err)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "ride rejected", "driver_id", driver.ID)
	return s.withSummaries(ctx, ride), nil
}

// Advance moves a ride along accepted -> in_progress -> completed.
// fare may only be set when completing.
func (s *Service) Advance(ctx context.Context, rideID uuid.UUID, driver models.Principal, target types.RideStatus, fare *float64) (*models.Ride, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "advance_ride"), rideID.String())

	if target != types.StatusInProgress && target != types.StatusCompleted {
		return nil, wrap.Error(ctx, types.Validationf("status must be one of %s, %s", types.StatusInProgress, types.StatusCompleted))
	}
	if fare != nil {
		if target != types.StatusCompleted {
			return nil, wrap.Error(ctx, types.Validationf("fare can only be set when completing a ride"))
		}
		if math.IsNaN(*fare) || math.IsInf(*fare, 0) || *fare < 0 {
			return nil, wrap.Error(ctx, types.Validationf("fare must be a non-negative number"))
		}
	}

	ride, err := s.advance(ctx, rideID, driver, target, fare)
	metrics.RecordTransition(target.String(), err)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.l.Info(ctx, "ride advanced", "status", target, "driver_id", driver.ID)
	return s.withSummaries(ctx, ride), nil
}

func (s *Service) advance(ctx context.Context, rideID uuid.UUID, driver models.Principal, target types.RideStatus, fare *float64) (*models.Ride, error) {
	// The guarded update can lose to a concurrent writer between the read and
	// the write; re-reading once classifies that outcome.
	for range 2 {
		current, err := s.repos.ride.Get(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if err := checkAdvance(current, driver.ID, target); err != nil {
			return nil, err
		}

		var ride *models.Ride
		err = s.trm.Do(ctx, func(ctx context.Context) error {
			var err error
			ride, err = s.repos.ride.Advance(ctx, rideID, driver.ID, current.Status, target, fare, s.now())
			if err != nil {
				return err
			}
			return s.journal(ctx, ride, driver.ID)
		})
		if errors.Is(err, types.ErrStatusMismatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return ride, nil
	}
	return nil, types.Transitionf("ride changed concurrently, retry with the current status")
}

// checkAdvance classifies an advance attempt against the stored ride.
// A ride without a driver has no driver-driven edge at all, so it is an
// illegal transition rather than an identity mismatch.
func checkAdvance(ride *models.Ride, driverID uuid.UUID, target types.RideStatus) error {
	if ride.DriverID == nil {
		return types.Transitionf("cannot move a %s ride to %s", ride.Status, target)
	}
	if !ride.IsDrivenBy(driverID) {
		return types.ErrNotRideDriver
	}
	if !types.CanTransition(ride.Status, target) {
		return types.Transitionf("cannot move a %s ride to %s", ride.Status, target)
	}
	return nil
}

// Remove deletes a ride regardless of its status. Only its passenger or
// its driver may do so.
func (s *Service) Remove(ctx context.Context, rideID uuid.UUID, principal models.Principal) (*models.Ride, error) {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "remove_ride"), rideID.String())

	ride, err := s.repos.ride.Get(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if !ride.IsParticipant(principal.ID) {
		return nil, wrap.Error(ctx, types.ErrNotRideParticipant)
	}

	if err := s.repos.ride.Delete(ctx, rideID); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to delete ride: %w", err))
	}

	s.l.Info(ctx, "ride removed", "status", ride.Status)
	return ride, nil
}
