package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// WishlistStore is the wishlist of one session, keyed by product id only.
type WishlistStore struct {
	mu      sync.Mutex
	items   []domain.WishlistItem
	key     string
	storage Storage
	logger  *slog.Logger
}

// NewWishlistStore rehydrates the wishlist of sessionID from storage.
func NewWishlistStore(ctx context.Context, storage Storage, sessionID string, logger *slog.Logger) *WishlistStore {
	s := &WishlistStore{
		key:     WishlistKey(sessionID),
		storage: storage,
		logger:  logger,
	}
	s.items = rehydrate(ctx, storage, s.key, validWish, logger)
	return s
}

func validWish(it domain.WishlistItem) bool {
	return it.ID > 0 && it.Quantity >= 1
}

// Add sums quantities for a known id and inserts unknown ids with a quantity
// of at least 1.
func (s *WishlistStore) Add(ctx context.Context, item domain.WishlistItem) []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := max(item.Quantity, 1)
	if i := domain.FindWish(s.items, item.ID); i >= 0 {
		s.items[i].Quantity += qty
	} else {
		item.Quantity = qty
		s.items = append(s.items, item)
	}
	return s.commit(ctx)
}

// Remove drops id. Unknown ids are ignored.
func (s *WishlistStore) Remove(ctx context.Context, id int64) []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.DeleteFunc(s.items, func(it domain.WishlistItem) bool { return it.ID == id })
	return s.commit(ctx)
}

// Decrease takes one from id and removes the entry instead of storing zero.
func (s *WishlistStore) Decrease(ctx context.Context, id int64) []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindWish(s.items, id); i >= 0 {
		if s.items[i].Quantity > 1 {
			s.items[i].Quantity--
		} else {
			s.items = slices.Delete(s.items, i, i+1)
		}
	}
	return s.commit(ctx)
}

// Clear empties the wishlist.
func (s *WishlistStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(ctx)
}

// Items is a copy of the saved entries in insertion order.
func (s *WishlistStore) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Count is the number of distinct saved products, as shown on the badge.
func (s *WishlistStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *WishlistStore) commit(ctx context.Context) []domain.WishlistItem {
	items := s.snapshot()
	persist(ctx, s.storage, s.key, items, s.logger)
	return items
}

func (s *WishlistStore) snapshot() []domain.WishlistItem {
	return append(make([]domain.WishlistItem, 0, len(s.items)), s.items...)
}
