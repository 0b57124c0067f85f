package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	pkgkafka "github.com/FBK-Manuel/wearehfg/pkg/kafka"
	"github.com/FBK-Manuel/wearehfg/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	args := m.Called(ctx, topic, e)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestProducer_DisabledDropsEvents(t *testing.T) {
	p := NewProducer(nil, testLogger())
	assert.False(t, p.Enabled())
	assert.NoError(t, p.PublishCartCleared(context.Background(), "sess-1"))
	assert.NoError(t, p.PublishFormSubmitted(context.Background(), "sess-1", "contact", "ok"))

	var nilProducer *Producer
	assert.False(t, nilProducer.Enabled())
	assert.NoError(t, nilProducer.PublishCartCleared(context.Background(), "sess-1"))
}

func TestPublishCartUpdated(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.AnythingOfType("*kafka.Event")).Return(nil)
	p := NewProducer(pub, testLogger())

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	items := []domain.CartLineItem{
		{ID: 1, Name: "Hoodie", Price: decimal.RequireFromString("59.99"), Quantity: 2, SelectedSize: "M", SelectedColor: "Black"},
	}
	require.NoError(t, p.PublishCartUpdated(ctx, "sess-1", "add", items))

	e := pub.Calls[0].Arguments.Get(2).(*pkgkafka.Event)
	assert.Equal(t, TopicCartUpdated, e.EventType)
	assert.Equal(t, "sess-1", e.AggregateID)
	assert.Equal(t, AggregateTypeSession, e.AggregateType)
	assert.Equal(t, "corr-1", e.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, e.DecodeData(&data))
	assert.Equal(t, "add", data.Action)
	assert.Equal(t, 2, data.ItemCount)
	assert.True(t, decimal.RequireFromString("119.98").Equal(data.Subtotal))
	require.Len(t, data.Items, 1)
	assert.Equal(t, "M", data.Items[0].Size)
	pub.AssertExpectations(t)
}

func TestPublishWishlistUpdated(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicWishlistUpdated, mock.Anything).Return(nil)
	p := NewProducer(pub, testLogger())

	items := []domain.WishlistItem{{ID: 3, Quantity: 1}, {ID: 9, Quantity: 2}}
	require.NoError(t, p.PublishWishlistUpdated(context.Background(), "sess-2", "remove", items))

	var data WishlistUpdatedData
	require.NoError(t, pub.Calls[0].Arguments.Get(2).(*pkgkafka.Event).DecodeData(&data))
	assert.Equal(t, []int64{3, 9}, data.ProductIDs)
	assert.Equal(t, 2, data.Count)
}

func TestPublish_WrapsError(t *testing.T) {
	pub := new(mockPublisher)
	boom := errors.New("broker down")
	pub.On("Publish", mock.Anything, TopicFormSubmitted, mock.Anything).Return(boom)
	p := NewProducer(pub, testLogger())

	err := p.PublishFormSubmitted(context.Background(), "sess-3", "salvation", "app_error")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), TopicFormSubmitted)
}
