package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/metrics"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

const defaultSinkTimeout = 5 * time.Second

// Deliverer fans a message out to the connections of groups.
type Deliverer interface {
	Deliver(msg []byte, groups ...string) ws.Stats
}

// Sink mirrors ride transitions to an external broker.
type Sink interface {
	Name() string
	PublishRideStatus(ctx context.Context, msg models.RideStatusUpdateMessage) error
}

/*
Dispatcher delivers ride events to live connections. Delivery is
fire-and-forget: a connection that cannot take the message misses it and the
publisher never sees an error. Sinks receive the same transitions
asynchronously, each call bounded by timeout.
*/
type Dispatcher struct {
	rooms   Deliverer
	sinks   []Sink
	timeout time.Duration

	wg sync.WaitGroup
	l  logger.Logger
}

func New(rooms Deliverer, l logger.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		rooms:   rooms,
		sinks:   sinks,
		timeout: defaultSinkTimeout,
		l:       l,
	}
}

// WithSinkTimeout bounds each sink publish.
func (d *Dispatcher) WithSinkTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Publish delivers kind with ride as payload to the audience of the event,
// resolved from the ride value passed in.
func (d *Dispatcher) Publish(ctx context.Context, kind types.EventKind, ride *models.Ride) ws.Stats {
	return d.Send(ctx, kind, ride, rooms.Audience(kind, ride)...)
}

// Send delivers kind with data to groups.
func (d *Dispatcher) Send(ctx context.Context, kind types.EventKind, data any, groups ...string) ws.Stats {
	ctx = wrap.WithAction(ctx, types.ActionDispatch)

	if len(groups) == 0 {
		return ws.Stats{}
	}

	msg, err := models.EncodeEvent(kind, data)
	if err != nil {
		d.l.Error(wrap.ErrorCtx(ctx, err), "failed to encode event", err, "event", kind)
		return ws.Stats{}
	}

	stats := d.rooms.Deliver(msg, groups...)
	metrics.RecordDispatch(kind.String(), stats.Delivered, stats.Dropped)
	if stats.Dropped > 0 {
		d.l.Warn(ctx, "event dropped for slow connections", "event", kind, "dropped", stats.Dropped)
	}
	d.l.Debug(ctx, "event published", "event", kind, "delivered", stats.Delivered)
	return stats
}

// Mirror hands the ride's current status to every sink in the background.
func (d *Dispatcher) Mirror(ctx context.Context, ride *models.Ride) {
	if len(d.sinks) == 0 {
		return
	}

	msg := models.NewRideStatusUpdateMessage(ride, wrap.FromContext(ctx).RequestID)
	// Detached from the request: the response may be written before brokers answer.
	base := context.WithoutCancel(wrap.WithAction(ctx, types.ActionMirror))

	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			err := sink.PublishRideStatus(ctx, msg)
			metrics.RecordSinkPublish(sink.Name(), err)
			if err != nil {
				d.l.Error(wrap.ErrorCtx(ctx, err), "failed to mirror ride status", err, "sink", sink.Name(), "status", msg.Status)
			}
		}()
	}
}

// Wait blocks until every pending sink publish finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
