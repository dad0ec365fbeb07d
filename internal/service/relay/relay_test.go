package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/memory"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/dispatch"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type client struct {
	id string

	mu   sync.Mutex
	msgs [][]byte
}

func (c *client) ID() string { return c.id }

func (c *client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *client) Close() error { return nil }

func (c *client) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

type env struct {
	svc    *Service
	rides  *memory.RideRepo
	store  *memory.LocationStore
	router *rooms.Router

	passenger, driver, stranger models.Principal
	pc, dc, sc                  *client
	ride                        *models.Ride
}

func newEnv(t *testing.T, status types.RideStatus) *env {
	t.Helper()
	ctx := context.Background()

	e := &env{
		rides:     memory.NewRideRepo(),
		router:    rooms.NewRouter(ws.NewConnHub(logger.Discard())),
		passenger: models.Principal{ID: uuid.New(), Role: types.RolePassenger},
		driver:    models.Principal{ID: uuid.New(), Role: types.RoleDriver},
		stranger:  models.Principal{ID: uuid.New(), Role: types.RolePassenger},
		pc:        &client{id: "p"},
		dc:        &client{id: "d"},
		sc:        &client{id: "s"},
	}
	e.store = memory.NewLocationStore(time.Minute)
	e.svc = New(e.rides, e.store, dispatch.New(e.router, logger.Discard()), logger.Discard())

	e.ride = &models.Ride{PassengerID: e.passenger.ID, Class: types.ClassCar, Status: types.StatusRequested}
	if err := e.rides.Create(ctx, e.ride); err != nil {
		t.Fatalf("create: %v", err)
	}
	if status != types.StatusRequested {
		if _, err := e.rides.Accept(ctx, e.ride.ID, e.driver.ID, time.Now()); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}
	if status == types.StatusInProgress || status == types.StatusCompleted {
		if _, err := e.rides.Advance(ctx, e.ride.ID, e.driver.ID, types.StatusAccepted, types.StatusInProgress, nil, time.Now()); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	if status == types.StatusCompleted {
		if _, err := e.rides.Advance(ctx, e.ride.ID, e.driver.ID, types.StatusInProgress, types.StatusCompleted, nil, time.Now()); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	for p, c := range map[models.Principal]*client{e.passenger: e.pc, e.driver: e.dc, e.stranger: e.sc} {
		if err := e.router.Join(p, c); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	return e
}

var pos = models.Position{Latitude: 33.68, Longitude: 73.04, Accuracy: 5}

func TestRelay_DeliversToPassengerOnly(t *testing.T) {
	e := newEnv(t, types.StatusInProgress)

	sample, err := e.svc.Relay(context.Background(), e.driver, e.ride.ID, pos)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if sample.Timestamp.IsZero() || sample.RideID != e.ride.ID {
		t.Fatalf("unexpected sample: %+v", sample)
	}

	if e.pc.count() != 1 {
		t.Fatalf("passenger must receive exactly one sample, got %d", e.pc.count())
	}
	if e.dc.count() != 0 || e.sc.count() != 0 {
		t.Fatalf("sample leaked: driver=%d stranger=%d", e.dc.count(), e.sc.count())
	}

	var got models.Envelope
	if err := json.Unmarshal(e.pc.msgs[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Event != types.EventLocationBroadcast {
		t.Fatalf("unexpected event %s", got.Event)
	}
}

func TestRelay_UnassignedDriver(t *testing.T) {
	e := newEnv(t, types.StatusAccepted)
	other := models.Principal{ID: uuid.New(), Role: types.RoleDriver}

	if _, err := e.svc.Relay(context.Background(), other, e.ride.ID, pos); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := e.svc.Relay(context.Background(), other, e.ride.ID, models.Position{Latitude: 500}); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("authorization must be decided before the position is checked, got %v", err)
	}
	if e.pc.count()+e.dc.count()+e.sc.count() != 0 {
		t.Fatalf("failed relay must not broadcast")
	}
	if _, err := e.svc.Latest(context.Background(), e.passenger, e.ride.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("failed relay must not be retained, got %v", err)
	}
}

func TestRelay_RideNotLive(t *testing.T) {
	for _, status := range []types.RideStatus{types.StatusRequested, types.StatusCompleted} {
		t.Run(status.String(), func(t *testing.T) {
			e := newEnv(t, status)
			_, err := e.svc.Relay(context.Background(), e.driver, e.ride.ID, pos)
			if status == types.StatusRequested {
				// Nobody drives a requested ride yet.
				if !errors.Is(err, types.ErrForbidden) {
					t.Fatalf("expected forbidden, got %v", err)
				}
				return
			}
			if !errors.Is(err, types.ErrInvalidState) {
				t.Fatalf("expected invalid state, got %v", err)
			}
			if e.pc.count() != 0 {
				t.Fatalf("no broadcast expected")
			}
		})
	}
}

func TestRelay_InvalidPosition(t *testing.T) {
	e := newEnv(t, types.StatusAccepted)
	bad := []models.Position{
		{Latitude: 100},
		{Longitude: 200},
		{Accuracy: -1},
	}
	for _, p := range bad {
		if _, err := e.svc.Relay(context.Background(), e.driver, e.ride.ID, p); !errors.Is(err, types.ErrValidation) {
			t.Fatalf("position %+v: expected validation error, got %v", p, err)
		}
	}
}

func TestRelay_LatestAndReplay(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, types.StatusAccepted)

	if _, err := e.svc.Relay(ctx, e.driver, e.ride.ID, pos); err != nil {
		t.Fatalf("relay: %v", err)
	}

	sample, err := e.svc.Latest(ctx, e.driver, e.ride.ID)
	if err != nil || sample.Position != pos {
		t.Fatalf("latest: %v %+v", err, sample)
	}
	if _, err := e.svc.Latest(ctx, e.stranger, e.ride.ID); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("stranger must be forbidden, got %v", err)
	}

	late := &client{id: "late"}
	e.svc.Replay(ctx, e.passenger, late)
	if late.count() != 1 {
		t.Fatalf("reconnecting passenger must receive the retained sample, got %d", late.count())
	}

	e.svc.Replay(ctx, e.driver, late)
	if late.count() != 1 {
		t.Fatalf("drivers get no replay")
	}

	e.svc.Forget(ctx, e.ride.ID)
	if _, err := e.svc.Latest(ctx, e.passenger, e.ride.ID); !errors.Is(err, types.ErrNoLocation) {
		t.Fatalf("expected no location after forget, got %v", err)
	}
}

func TestRelay_LatestIgnoresFinishedRide(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, types.StatusCompleted)

	// A relay that passed its checks just before completion can still land after Forget.
	if err := e.store.Put(ctx, models.LocationSample{RideID: e.ride.ID, Position: pos, Timestamp: time.Now()}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := e.svc.Latest(ctx, e.passenger, e.ride.ID); !errors.Is(err, types.ErrNoLocation) {
		t.Fatalf("completed ride must have no location, got %v", err)
	}
}
