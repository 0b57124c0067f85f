package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("storefront.cart.updated", "sess-1", "cart", "storefront", map[string]int{"items": 2})
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, 1, e.Version)
	assert.JSONEq(t, `{"items":2}`, string(e.Data))

	var data map[string]int
	require.NoError(t, e.DecodeData(&data))
	assert.Equal(t, 2, data["items"])
}

func TestNewEvent_BadPayload(t *testing.T) {
	_, err := NewEvent("x", "a", "b", "c", make(chan int))
	require.Error(t, err)
}

func TestMessage_Headers(t *testing.T) {
	e, err := NewEvent("storefront.form.submitted", "sess-9", "form", "storefront", nil)
	require.NoError(t, err)
	e.WithCorrelationID("corr-5").WithMetadata("form", "contact")

	msg, err := Message("storefront.forms", e)
	require.NoError(t, err)

	assert.Equal(t, "storefront.forms", msg.Topic)
	assert.Equal(t, []byte("sess-9"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "storefront.form.submitted", headers["event_type"])
	assert.Equal(t, "corr-5", headers["correlation_id"])
}

func TestProducer_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w, logger: discardLogger()}

	e, err := NewEvent("storefront.cart.cleared", "sess-2", "cart", "storefront", struct{}{})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), "storefront.cart", e))
	require.Len(t, w.msgs, 1)

	w.err = errors.New("leader not available")
	err = p.Publish(context.Background(), "storefront.cart", e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront.cart.cleared")
}

func TestProducer_PingWithoutBrokers(t *testing.T) {
	p := &Producer{writer: &recordingWriter{}, logger: discardLogger()}
	require.Error(t, p.Ping(context.Background()))
}
