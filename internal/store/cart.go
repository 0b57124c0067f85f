package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// AddCartItem is an add-to-cart request. Empty Size, Color and availability
// lists are resolved from the store's CartDefaults.
type AddCartItem struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	Image           string
	Quantity        int
	Size            string
	Color           string
	AvailableSizes  []string
	AvailableColors []string
}

// CartStore is the cart of one session. Every mutation writes the whole
// collection through to storage.
type CartStore struct {
	mu       sync.Mutex
	items    []domain.CartLineItem
	key      string
	storage  Storage
	defaults CartDefaults
	logger   *slog.Logger
}

// NewCartStore rehydrates the cart of sessionID from storage.
func NewCartStore(ctx context.Context, storage Storage, sessionID string, defaults CartDefaults, logger *slog.Logger) (*CartStore, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	s := &CartStore{
		key:      CartKey(sessionID),
		storage:  storage,
		defaults: defaults,
		logger:   logger,
	}
	s.items = rehydrate(ctx, storage, s.key, validLine, logger)
	return s, nil
}

func validLine(it domain.CartLineItem) bool {
	return it.ID > 0 && it.Quantity >= 1
}

// Add merges in into the line with the same id, size and color, or appends a
// new line. A quantity below 1 counts as 1.
func (s *CartStore) Add(ctx context.Context, in AddCartItem) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.add(s.resolve(in))
	return s.commit(ctx)
}

// Remove drops the matching line. Unknown keys are ignored.
func (s *CartStore) Remove(ctx context.Context, key domain.LineKey) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindLine(s.items, key); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	return s.commit(ctx)
}

// UpdateQuantity sets the quantity of the matching line, never below 1.
// Unknown keys are ignored.
func (s *CartStore) UpdateQuantity(ctx context.Context, key domain.LineKey, quantity int) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindLine(s.items, key); i >= 0 {
		s.items[i].Quantity = max(quantity, 1)
	}
	return s.commit(ctx)
}

// Increment adds one to the matching line.
func (s *CartStore) Increment(ctx context.Context, key domain.LineKey) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindLine(s.items, key); i >= 0 {
		s.items[i].Quantity++
	}
	return s.commit(ctx)
}

// Decrement takes one from the matching line while it holds more than one.
// A line at quantity 1 is left alone; removal is explicit.
func (s *CartStore) Decrement(ctx context.Context, key domain.LineKey) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindLine(s.items, key); i >= 0 && s.items[i].Quantity > 1 {
		s.items[i].Quantity--
	}
	return s.commit(ctx)
}

// ChangeVariant moves a line to a new size and color, merging into an
// existing line for that variant if there is one.
func (s *CartStore) ChangeVariant(ctx context.Context, key domain.LineKey, size, color string) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.FindLine(s.items, key)
	if i < 0 {
		return s.snapshot()
	}
	moved := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	if size != "" {
		moved.SelectedSize = size
	}
	if color != "" {
		moved.SelectedColor = color
	}
	s.add(moved)
	return s.commit(ctx)
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *CartStore) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Summary prices the current cart.
func (s *CartStore) Summary() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summarize(s.items)
}

func (s *CartStore) resolve(in AddCartItem) domain.CartLineItem {
	li := domain.CartLineItem{
		ID:              in.ID,
		Name:            in.Name,
		Price:           in.Price,
		Image:           in.Image,
		Quantity:        max(in.Quantity, 1),
		SelectedSize:    in.Size,
		SelectedColor:   in.Color,
		AvailableSizes:  slices.Clone(in.AvailableSizes),
		AvailableColors: slices.Clone(in.AvailableColors),
	}
	if li.SelectedSize == "" {
		li.SelectedSize = s.defaults.Size
	}
	if li.SelectedColor == "" {
		li.SelectedColor = s.defaults.Color
	}
	if len(li.AvailableSizes) == 0 {
		li.AvailableSizes = slices.Clone(s.defaults.Sizes)
	}
	if len(li.AvailableColors) == 0 {
		li.AvailableColors = slices.Clone(s.defaults.Colors)
	}
	return li
}

// add must be called with mu held.
func (s *CartStore) add(li domain.CartLineItem) {
	if i := domain.FindLine(s.items, li.Key()); i >= 0 {
		s.items[i].Quantity += li.Quantity
		return
	}
	s.items = append(s.items, li)
}

// commit must be called with mu held.
func (s *CartStore) commit(ctx context.Context) []domain.CartLineItem {
	items := s.snapshot()
	persist(ctx, s.storage, s.key, items, s.logger)
	return items
}

func (s *CartStore) snapshot() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(s.items))
	for i, it := range s.items {
		it.AvailableSizes = slices.Clone(it.AvailableSizes)
		it.AvailableColors = slices.Clone(it.AvailableColors)
		out[i] = it
	}
	return out
}
