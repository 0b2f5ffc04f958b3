package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqevent/pkg/logger"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter("events", w, nil, "", testLogger())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "inner:"+msg.Topic)
		return next(ctx, msg)
	})

	msg, err := NewMessage().
		WithKey("EVT_1").
		WithValue(map[string]string{"status": "approved"}).
		WithEventType("event.approved").
		Build()
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "EVT_1", string(w.messages[0].Key))
	assert.JSONEq(t, `{"status":"approved"}`, string(w.messages[0].Value))
	assert.Equal(t, "event.approved", header(w.messages[0], HeaderEventType))
	assert.NotEmpty(t, header(w.messages[0], HeaderEventID))
	assert.Equal(t, []string{"outer", "inner:events"}, seen)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriter("events", &fakeWriter{}, nil, "", testLogger())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_DeadLetter(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	dlq := &fakeWriter{}
	p := NewProducerWithWriter("events", w, dlq, "events.dlq", testLogger())

	msg, err := NewMessage().WithKey("EVT_1").WithValue("payload").Build()
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	require.Error(t, err)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "events", header(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, "connection refused", header(dlq.messages[0], "dlq-error"))
	assert.Empty(t, msg.Headers[HeaderOriginalTopic], "caller's headers must not change")
}

func TestProducer_Closed(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter("events", w, nil, "", testLogger())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: i/o Timeout")))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(ErrEmptyKey))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("unknown topic or partition")))

	assert.True(t, ShouldRetry(errors.New("connection reset by peer"), 0, 3))
	assert.False(t, ShouldRetry(errors.New("connection reset by peer"), 3, 3))
}
