package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaSink publishes each record as a JSON message keyed by record id.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a Kafka producer for topic.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Name() string {
	return "kafka"
}

func (k *KafkaSink) Publish(ctx context.Context, rec weather.Record) error {
	msg, err := recordToMessage(rec)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

func recordToMessage(rec weather.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID.String()),
		Value: data,
		Time:  rec.Timestamp,
		Headers: []kafkago.Header{
			{Key: "units", Value: []byte(rec.Units)},
			{Key: "observed_at", Value: []byte(rec.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
