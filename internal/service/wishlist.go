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

type AddWishInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Name      string          `json:"name" validate:"required,max=500"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity" validate:"gte=0,lte=100"`
}

type WishlistView struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

func newWishlistView(items []domain.WishlistItem) WishlistView {
	return WishlistView{Items: items, Count: len(items)}
}

type WishlistService struct {
	wishlists *store.Registry[*store.WishlistStore]
	producer  *event.Producer
	logger    *slog.Logger
}

func NewWishlistService(wishlists *store.Registry[*store.WishlistStore], producer *event.Producer, logger *slog.Logger) *WishlistService {
	return &WishlistService{wishlists: wishlists, producer: producer, logger: logger}
}

func (s *WishlistService) open(ctx context.Context, sessionID string) (*store.WishlistStore, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	w, err := s.wishlists.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open wishlist: %w", err)
	}
	return w, nil
}

func (s *WishlistService) Get(ctx context.Context, sessionID string) (WishlistView, error) {
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	return newWishlistView(w.Items()), nil
}

func (s *WishlistService) Add(ctx context.Context, sessionID string, in AddWishInput) (WishlistView, error) {
	if in.Price.IsNegative() {
		return WishlistView{}, apperrors.InvalidInput("price must not be negative")
	}
	return s.mutate(ctx, sessionID, "add", func(w *store.WishlistStore) []domain.WishlistItem {
		return w.Add(ctx, domain.WishlistItem{
			ID:       in.ProductID,
			Name:     in.Name,
			Price:    in.Price,
			Image:    in.Image,
			Quantity: in.Quantity,
		})
	})
}

func (s *WishlistService) Remove(ctx context.Context, sessionID string, productID int64) (WishlistView, error) {
	return s.mutate(ctx, sessionID, "remove", func(w *store.WishlistStore) []domain.WishlistItem {
		return w.Remove(ctx, productID)
	})
}

func (s *WishlistService) Decrease(ctx context.Context, sessionID string, productID int64) (WishlistView, error) {
	return s.mutate(ctx, sessionID, "decrease", func(w *store.WishlistStore) []domain.WishlistItem {
		return w.Decrease(ctx, productID)
	})
}

func (s *WishlistService) Clear(ctx context.Context, sessionID string) (WishlistView, error) {
	return s.mutate(ctx, sessionID, "clear", func(w *store.WishlistStore) []domain.WishlistItem {
		w.Clear(ctx)
		return w.Items()
	})
}

func (s *WishlistService) mutate(ctx context.Context, sessionID, action string, apply func(*store.WishlistStore) []domain.WishlistItem) (WishlistView, error) {
	w, err := s.open(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	items := apply(w)
	s.logger.DebugContext(ctx, "wishlist updated",
		slog.String("session_id", sessionID),
		slog.String("action", action),
		slog.Int("count", len(items)),
	)
	if err := s.producer.PublishWishlistUpdated(ctx, sessionID, action, items); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return newWishlistView(items), nil
}
