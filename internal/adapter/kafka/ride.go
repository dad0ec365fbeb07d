package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/kafka"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

const RideEventsTopic = "ride.events"

type MessageWriter interface {
	Write(ctx context.Context, key string, value []byte) error
	Close() error
}

// RideEventWriter appends ride transitions to a topic keyed by ride id, so
// every transition of one ride stays ordered on one partition.
type RideEventWriter struct {
	w MessageWriter
	l logger.Logger
}

func NewRideEventWriter(w MessageWriter, l logger.Logger) *RideEventWriter {
	return &RideEventWriter{w: w, l: l}
}

// Dial creates a writer for topic, ride.events when empty.
func Dial(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = RideEventsTopic
	}
	return kafka.NewWriter(brokers, topic)
}

func (k *RideEventWriter) Name() string { return string(types.SinkKafka) }

func (k *RideEventWriter) PublishRideStatus(ctx context.Context, msg models.RideStatusUpdateMessage) error {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "kafka_publish_ride_status"), msg.RideID.String())

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	if err := k.w.Write(ctx, msg.RideID.String(), body); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to write message: %w", err))
	}

	k.l.Debug(ctx, "ride status written", "status", msg.Status)
	return nil
}

func (k *RideEventWriter) Close() error {
	return k.w.Close()
}
