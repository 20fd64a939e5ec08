package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

func TestKafkaPublisher_PublishSaved(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer, "diabetes.records", slog.New(slog.NewTextHandler(io.Discard, nil)))
	pub.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	record := records.Record{ID: 77, Age: 60, Sex: "female", TotalScore: 21, RiskCategory: "Very High Risk"}
	require.NoError(t, pub.PublishSaved(context.Background(), record))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	require.Equal(t, "77", string(msg.Key))
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, RecordSaved, string(msg.Headers[0].Value))

	var evt Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	require.Equal(t, RecordSaved, evt.Type)
	require.NotEmpty(t, evt.ID)
	require.Equal(t, record, evt.Record)
	require.Equal(t, pub.now(), evt.OccurredAt)

	require.NoError(t, pub.Close())
	require.True(t, writer.closed)
}

func TestKafkaPublisher_WrapsWriteFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	pub := newKafkaPublisher(writer, "diabetes.records", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := pub.PublishSaved(context.Background(), records.Record{ID: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "diabetes.records")
}

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}
