package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/IBM/sarama"

	"github.com/relaypipe/normalize"
	"github.com/relaypipe/normalize/codec"
)

// Kafka emits canonical events to a Kafka topic through a sarama
// SyncProducer. Events are keyed by source so one source's events land on
// one partition and stay ordered relative to each other.
//
// The producer is created by the caller but owned by the sink: Close closes
// it.
//
// Example:
//
//	producer, err := sarama.NewSyncProducerFromClient(client)
//	if err != nil {
//	    return err
//	}
//	k, err := sink.NewKafka(producer, "raw-events")
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
	codec    codec.Codec
	logger   *slog.Logger
	closed   int32
}

// KafkaOption configures Kafka.
type KafkaOption func(*Kafka)

// WithKafkaCodec sets the outbound codec (default JSON).
func WithKafkaCodec(c codec.Codec) KafkaOption {
	return func(s *Kafka) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithKafkaLogger sets the logger (default slog.Default()).
func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(s *Kafka) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewKafka creates a Kafka sink publishing to topic.
func NewKafka(producer sarama.SyncProducer, topic string, opts ...KafkaOption) (*Kafka, error) {
	if producer == nil {
		return nil, ErrProducerRequired
	}
	s := &Kafka{
		producer: producer,
		topic:    topic,
		codec:    codec.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Emit publishes every event in one producer batch.
func (s *Kafka) Emit(ctx context.Context, events normalize.RawEvents) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		msg, err := Encode(s.codec, event)
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: s.topic,
			Key:   sarama.StringEncoder(msg.Source),
			Value: sarama.ByteEncoder(msg.Body),
			Headers: []sarama.RecordHeader{
				{Key: []byte("id"), Value: []byte(msg.ID)},
				{Key: []byte("api"), Value: []byte(msg.API)},
				{Key: []byte("content-type"), Value: []byte(msg.ContentType)},
			},
		})
	}

	if err := s.producer.SendMessages(msgs); err != nil {
		s.logger.Error("kafka emit failed",
			"topic", s.topic,
			"events", len(msgs),
			"error", err,
		)
		return fmt.Errorf("emit to kafka topic %s: %w", s.topic, err)
	}
	return nil
}

// Close closes the producer.
func (s *Kafka) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	return s.producer.Close()
}

// Compile-time check.
var _ Sink = (*Kafka)(nil)
