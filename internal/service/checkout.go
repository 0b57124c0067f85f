package service

import (
	"context"
	"log/slog"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// CheckoutSummary is the review step shown after the checkout form passes
// validation. No order is placed and no payment is taken.
type CheckoutSummary struct {
	Items         []domain.CartLineItem `json:"items"`
	Summary       domain.CartSummary    `json:"summary"`
	ShipTo        domain.CheckoutForm   `json:"ship_to"`
	PaymentMethod string                `json:"payment_method"`
}

type CheckoutService struct {
	carts  *CartService
	logger *slog.Logger
}

func NewCheckoutService(carts *CartService, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{carts: carts, logger: logger}
}

// Review prices the session cart for an already validated checkout form.
func (s *CheckoutService) Review(ctx context.Context, sessionID string, form domain.CheckoutForm) (CheckoutSummary, error) {
	view, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return CheckoutSummary{}, err
	}
	s.logger.InfoContext(ctx, "checkout reviewed",
		slog.String("session_id", sessionID),
		slog.Int("item_count", view.Summary.ItemCount),
		slog.String("payment_method", form.PaymentMethod),
	)
	return CheckoutSummary{
		Items:         view.Items,
		Summary:       view.Summary,
		ShipTo:        form,
		PaymentMethod: form.PaymentMethod,
	}, nil
}
