package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	pkgkafka "github.com/FBK-Manuel/wearehfg/pkg/kafka"
	"github.com/FBK-Manuel/wearehfg/pkg/logger"
)

// Kafka topics for storefront session events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicCartCleared     = "storefront.cart.cleared"
	TopicWishlistUpdated = "storefront.wishlist.updated"
	TopicFormSubmitted   = "storefront.form.submitted"
)

const (
	AggregateTypeSession = "session"
	SourceStorefront     = "storefront"
)

// Publisher is the part of pkg/kafka.Producer this package needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, e *pkgkafka.Event) error
}

type CartLineData struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	Action    string          `json:"action"`
	Items     []CartLineData  `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartClearedData struct {
	SessionID string `json:"session_id"`
}

type WishlistUpdatedData struct {
	SessionID  string  `json:"session_id"`
	Action     string  `json:"action"`
	ProductIDs []int64 `json:"product_ids"`
	Count      int     `json:"count"`
}

// FormSubmittedData records the outcome of a community form, never its content.
type FormSubmittedData struct {
	SessionID string `json:"session_id"`
	Form      string `json:"form"`
	Outcome   string `json:"outcome"`
}

// Producer publishes storefront events. A Producer without a Publisher
// drops every event, which is how the service runs without Kafka.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// Enabled reports whether events actually leave the process.
func (p *Producer) Enabled() bool {
	return p != nil && p.publisher != nil
}

func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID, action string, items []domain.CartLineItem) error {
	if !p.Enabled() {
		return nil
	}
	summary := domain.Summarize(items)
	lines := make([]CartLineData, len(items))
	for i, it := range items {
		lines[i] = CartLineData{
			ProductID: it.ID,
			Name:      it.Name,
			Size:      it.SelectedSize,
			Color:     it.SelectedColor,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}
	data := CartUpdatedData{
		SessionID: sessionID,
		Action:    action,
		Items:     lines,
		ItemCount: summary.ItemCount,
		Subtotal:  summary.Subtotal,
	}
	if err := p.publish(ctx, TopicCartUpdated, sessionID, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.String("action", action),
		slog.Int("item_count", summary.ItemCount),
	)
	return nil
}

func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	if !p.Enabled() {
		return nil
	}
	return p.publish(ctx, TopicCartCleared, sessionID, CartClearedData{SessionID: sessionID})
}

func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID, action string, items []domain.WishlistItem) error {
	if !p.Enabled() {
		return nil
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	data := WishlistUpdatedData{SessionID: sessionID, Action: action, ProductIDs: ids, Count: len(items)}
	return p.publish(ctx, TopicWishlistUpdated, sessionID, data)
}

func (p *Producer) PublishFormSubmitted(ctx context.Context, sessionID, form, outcome string) error {
	if !p.Enabled() {
		return nil
	}
	data := FormSubmittedData{SessionID: sessionID, Form: form, Outcome: outcome}
	return p.publish(ctx, TopicFormSubmitted, sessionID, data)
}

func (p *Producer) publish(ctx context.Context, topic, sessionID string, data any) error {
	e, err := pkgkafka.NewEvent(topic, sessionID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		e = e.WithCorrelationID(id)
	}
	if err := p.publisher.Publish(ctx, topic, e); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
