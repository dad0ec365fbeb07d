package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
	"github.com/hamza-safwan/mini-ride-booking/pkg/rabbit"
)

const (
	RideExchange = "ride_topic"

	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)

// RideBroker mirrors ride transitions to the ride topic exchange.
type RideBroker struct {
	client       *rabbit.RabbitMQ
	RideExchange string

	l logger.Logger
}

func NewRideBroker(client *rabbit.RabbitMQ, log logger.Logger) *RideBroker {
	return &RideBroker{
		client:       client,
		RideExchange: RideExchange,

		l: log,
	}
}

func (r *RideBroker) Name() string { return string(types.SinkRabbitMQ) }

// Setup declares the exchange rides are published to.
func (r *RideBroker) Setup(ctx context.Context) error {
	return r.client.DeclareTopicExchange(ctx, r.RideExchange)
}

// RoutingKey is the key a transition into status is published with.
func RoutingKey(status types.RideStatus) string {
	return fmt.Sprintf("ride.status.%s", status)
}

// PublishRideStatus sends msg to 'ride_topic' with key 'ride.status.{status}'.
func (r *RideBroker) PublishRideStatus(ctx context.Context, msg models.RideStatusUpdateMessage) error {
	ctx = wrap.WithRideID(wrap.WithAction(ctx, "rabbitmq_publish_ride_status"), msg.RideID.String())

	if err := r.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := RoutingKey(msg.Status)

	if err := retry(ctx, publishAttempts, publishBackoff, func() error {
		if err := r.client.Channel().PublishWithContext(
			ctx,
			r.RideExchange, // exchange
			key,            // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:   "application/json",
				DeliveryMode:  amqp091.Persistent,
				CorrelationId: msg.CorrelationID,
				Body:          body,
				Timestamp:     time.Now(),
			},
		); err != nil {
			return fmt.Errorf("failed to publish with context: %w", err)
		}
		return nil
	}); err != nil {
		return wrap.Error(ctx, err)
	}

	r.l.Debug(ctx, "ride status published", "routing_key", key)
	return nil
}
