package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type client struct {
	id   string
	full bool

	mu   sync.Mutex
	msgs []models.Envelope
}

func (c *client) ID() string { return c.id }

func (c *client) Send(msg []byte) error {
	if c.full {
		return ws.ErrSendBufferFull
	}
	var env models.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, env)
	return nil
}

func (c *client) Close() error { return nil }

func (c *client) events() []types.EventKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.EventKind, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.Event)
	}
	return out
}

type sink struct {
	name  string
	err   error
	delay time.Duration

	mu   sync.Mutex
	msgs []models.RideStatusUpdateMessage
}

func (s *sink) Name() string { return s.name }

func (s *sink) PublishRideStatus(ctx context.Context, msg models.RideStatusUpdateMessage) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

type world struct {
	router    *rooms.Router
	passenger models.Principal
	driver    models.Principal
	other     models.Principal

	pc, dc, oc *client
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		router:    rooms.NewRouter(ws.NewConnHub(logger.Discard())),
		passenger: models.Principal{ID: uuid.New(), Role: types.RolePassenger},
		driver:    models.Principal{ID: uuid.New(), Role: types.RoleDriver},
		other:     models.Principal{ID: uuid.New(), Role: types.RoleDriver},
		pc:        &client{id: "passenger"},
		dc:        &client{id: "driver"},
		oc:        &client{id: "other"},
	}
	for p, c := range map[models.Principal]*client{w.passenger: w.pc, w.driver: w.dc, w.other: w.oc} {
		if err := w.router.Join(p, c); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	return w
}

func TestDispatcher_PublishAudience(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	d := New(w.router, logger.Discard())

	ride := &models.Ride{ID: uuid.New(), PassengerID: w.passenger.ID, Status: types.StatusRequested}
	if stats := d.Publish(ctx, types.EventRideCreated, ride); stats.Delivered != 2 {
		t.Fatalf("created must reach both drivers, got %+v", stats)
	}
	if len(w.pc.events()) != 0 {
		t.Fatalf("passenger must not receive ride:created")
	}

	ride.Status = types.StatusAccepted
	ride.DriverID = &w.driver.ID
	d.Publish(ctx, types.EventRideAccepted, ride)
	d.Publish(ctx, types.EventRideUpdated, ride)

	if got := w.pc.events(); len(got) != 1 || got[0] != types.EventRideAccepted {
		t.Fatalf("passenger events: %v", got)
	}
	// The accepting driver sits in drivers and in its user group but gets one copy.
	if got := w.dc.events(); len(got) != 2 || got[1] != types.EventRideUpdated {
		t.Fatalf("driver events: %v", got)
	}
	if got := w.oc.events(); len(got) != 2 || got[1] != types.EventRideUpdated {
		t.Fatalf("competing driver must learn the offer is gone: %v", got)
	}

	ride.Status = types.StatusInProgress
	d.Publish(ctx, types.EventRideUpdated, ride)
	if len(w.oc.events()) != 2 {
		t.Fatalf("unrelated driver received an in progress update")
	}
	if len(w.pc.events()) != 2 || len(w.dc.events()) != 3 {
		t.Fatalf("participants must receive the in progress update")
	}
}

func TestDispatcher_SlowConnectionDoesNotFailPublish(t *testing.T) {
	hub := ws.NewConnHub(logger.Discard())
	router := rooms.NewRouter(hub)
	driver := models.Principal{ID: uuid.New(), Role: types.RoleDriver}
	if err := router.Join(driver, &client{id: "slow", full: true}); err != nil {
		t.Fatalf("join: %v", err)
	}

	d := New(router, logger.Discard())
	ride := &models.Ride{ID: uuid.New(), PassengerID: uuid.New(), Status: types.StatusRequested}
	stats := d.Publish(context.Background(), types.EventRideCreated, ride)
	if stats.Dropped != 1 || stats.Delivered != 0 {
		t.Fatalf("expected one drop, got %+v", stats)
	}
}

func TestDispatcher_Mirror(t *testing.T) {
	w := newWorld(t)
	ok := &sink{name: "ok"}
	failing := &sink{name: "failing", err: errors.New("broker down")}
	slow := &sink{name: "slow", delay: time.Second}

	d := New(w.router, logger.Discard(), ok, failing, slow).WithSinkTimeout(50 * time.Millisecond)

	ride := &models.Ride{ID: uuid.New(), PassengerID: w.passenger.ID, Status: types.StatusRequested}
	start := time.Now()
	d.Mirror(context.Background(), ride)
	if time.Since(start) > 40*time.Millisecond {
		t.Fatalf("mirror must not block the caller")
	}
	d.Wait()

	if ok.count() != 1 || failing.count() != 1 {
		t.Fatalf("expected one message per sink, got ok=%d failing=%d", ok.count(), failing.count())
	}
	if slow.count() != 0 {
		t.Fatalf("slow sink must be cut by the timeout")
	}
	if msg := ok.msgs[0]; msg.RideID != ride.ID || msg.Event != types.JournalRideRequested {
		t.Fatalf("unexpected mirrored message: %+v", msg)
	}
}
