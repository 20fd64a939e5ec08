package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

// RecordSaved is the event type emitted after a record is stored.
const RecordSaved = "record.saved"

// Event is the envelope written to the topic.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Record     records.Record `json:"record"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes record events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With("component", "events.kafka"),
		now:    time.Now,
	}
}

// PublishSaved emits a record.saved event keyed by record ID.
func (p *KafkaPublisher) PublishSaved(ctx context.Context, record records.Record) error {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       RecordSaved,
		OccurredAt: p.now().UTC(),
		Record:     record,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}
	p.logger.DebugContext(ctx, "publishing record event",
		"event_type", evt.Type,
		"record_id", record.ID,
		"topic", p.topic,
		"payload_size", len(payload),
	)
	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(record.ID, 10)),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "event_id", Value: []byte(evt.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ records.Publisher = (*KafkaPublisher)(nil)
