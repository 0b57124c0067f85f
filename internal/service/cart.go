package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/event"
	"github.com/FBK-Manuel/wearehfg/internal/store"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

// AddItemInput is an add-to-cart request. Size, color and the availability
// lists are optional and resolve from the cart defaults.
type AddItemInput struct {
	ProductID       int64           `json:"product_id" validate:"required,gt=0"`
	Name            string          `json:"name" validate:"required,max=500"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image"`
	Quantity        int             `json:"quantity" validate:"gte=0,lte=100"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	AvailableSizes  []string        `json:"available_sizes"`
	AvailableColors []string        `json:"available_colors"`
}

// CartView is a cart as the storefront renders it.
type CartView struct {
	Items   []domain.CartLineItem `json:"items"`
	Summary domain.CartSummary    `json:"summary"`
}

func newCartView(items []domain.CartLineItem) CartView {
	return CartView{Items: items, Summary: domain.Summarize(items)}
}

// CartService applies cart mutations to the store of the calling session
// and announces them on the event bus.
type CartService struct {
	carts    *store.Registry[*store.CartStore]
	producer *event.Producer
	logger   *slog.Logger
}

func NewCartService(carts *store.Registry[*store.CartStore], producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, producer: producer, logger: logger}
}

func (s *CartService) open(ctx context.Context, sessionID string) (*store.CartStore, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open cart: %w", err)
	}
	return c, nil
}

func (s *CartService) Get(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c.Items()), nil
}

func (s *CartService) Add(ctx context.Context, sessionID string, in AddItemInput) (CartView, error) {
	if in.Price.IsNegative() {
		return CartView{}, apperrors.InvalidInput("price must not be negative")
	}
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items := c.Add(ctx, store.AddCartItem{
		ID:              in.ProductID,
		Name:            in.Name,
		Price:           in.Price,
		Image:           in.Image,
		Quantity:        in.Quantity,
		Size:            in.Size,
		Color:           in.Color,
		AvailableSizes:  in.AvailableSizes,
		AvailableColors: in.AvailableColors,
	})
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", in.ProductID),
		slog.Int("line_count", len(items)),
	)
	s.publishUpdated(ctx, sessionID, "add", items)
	return newCartView(items), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) (CartView, error) {
	return s.mutate(ctx, sessionID, "update_quantity", func(c *store.CartStore) []domain.CartLineItem {
		return c.UpdateQuantity(ctx, key, quantity)
	})
}

func (s *CartService) Increment(ctx context.Context, sessionID string, key domain.LineKey) (CartView, error) {
	return s.mutate(ctx, sessionID, "increment", func(c *store.CartStore) []domain.CartLineItem {
		return c.Increment(ctx, key)
	})
}

func (s *CartService) Decrement(ctx context.Context, sessionID string, key domain.LineKey) (CartView, error) {
	return s.mutate(ctx, sessionID, "decrement", func(c *store.CartStore) []domain.CartLineItem {
		return c.Decrement(ctx, key)
	})
}

func (s *CartService) ChangeVariant(ctx context.Context, sessionID string, key domain.LineKey, size, color string) (CartView, error) {
	return s.mutate(ctx, sessionID, "change_variant", func(c *store.CartStore) []domain.CartLineItem {
		return c.ChangeVariant(ctx, key, size, color)
	})
}

func (s *CartService) Remove(ctx context.Context, sessionID string, key domain.LineKey) (CartView, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *store.CartStore) []domain.CartLineItem {
		return c.Remove(ctx, key)
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	c.Clear(ctx)
	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", sessionID))
	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return newCartView(c.Items()), nil
}

// Summary is the order summary of the session cart.
func (s *CartService) Summary(ctx context.Context, sessionID string) (domain.CartSummary, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return c.Summary(), nil
}

func (s *CartService) mutate(ctx context.Context, sessionID, action string, apply func(*store.CartStore) []domain.CartLineItem) (CartView, error) {
	c, err := s.open(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items := apply(c)
	s.logger.DebugContext(ctx, "cart updated",
		slog.String("session_id", sessionID),
		slog.String("action", action),
	)
	s.publishUpdated(ctx, sessionID, action, items)
	return newCartView(items), nil
}

func (s *CartService) publishUpdated(ctx context.Context, sessionID, action string, items []domain.CartLineItem) {
	if err := s.producer.PublishCartUpdated(ctx, sessionID, action, items); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
