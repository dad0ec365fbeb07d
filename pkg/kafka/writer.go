package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes keyed messages to a single topic.
type Writer struct {
	brokers []string
	topic   string
	w       *kafkago.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	return &Writer{
		brokers: brokers,
		topic:   topic,
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (w *Writer) Topic() string { return w.topic }

// Write sends one message. Messages with the same key land on the same partition.
func (w *Writer) Write(ctx context.Context, key string, value []byte) error {
	return w.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	})
}

// EnsureTopic creates the topic if the broker does not have it yet.
func (w *Writer) EnsureTopic(ctx context.Context, partitions int) error {
	if len(w.brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	conn, err := kafkago.DialContext(ctx, "tcp", w.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.CreateTopics(kafkago.TopicConfig{
		Topic:             w.topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}); err != nil {
		return fmt.Errorf("kafka: create topic %s: %w", w.topic, err)
	}
	return nil
}

func (w *Writer) Close() error {
	if w.w == nil {
		return nil
	}
	return w.w.Close()
}
