// Package store holds the per-session cart and wishlist collections and
// mirrors them to a pluggable Storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

// Storage is a key/value mirror for session state. Load returns an error
// matching apperrors.ErrNotFound when the key has never been saved.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key prefixes, one namespace per collection.
const (
	cartPrefix     = "cart:"
	wishlistPrefix = "wishlist:"
	authPrefix     = "auth:"
)

func CartKey(sessionID string) string     { return cartPrefix + sessionID }
func WishlistKey(sessionID string) string { return wishlistPrefix + sessionID }
func AuthKey(sessionID string) string     { return authPrefix + sessionID }

// rehydrate decodes the collection stored under key. A missing key, a read
// failure or a payload that does not decode cleanly yields an empty
// collection; decoded entries rejected by keep are dropped.
func rehydrate[T any](ctx context.Context, s Storage, key string, keep func(T) bool, logger *slog.Logger) []T {
	raw, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "failed to load session state, starting empty",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	// Unmarshal keeps going after a type error, so decode into a scratch
	// slice and only trust it when the whole payload decoded.
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		logger.WarnContext(ctx, "discarding corrupt session state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil
	}

	kept := slices.DeleteFunc(decoded, func(v T) bool { return !keep(v) })
	if dropped := len(decoded) - len(kept); dropped > 0 {
		logger.WarnContext(ctx, "dropped invalid session state entries",
			slog.String("key", key),
			slog.Int("dropped", dropped),
		)
	}
	return kept
}

// persist writes v under key. Failures are logged and swallowed: the
// in-memory collection stays authoritative for the session.
func persist(ctx context.Context, s Storage, key string, v any, logger *slog.Logger) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = s.Save(ctx, key, raw)
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist session state",
			slog.String("key", key),
			slog.String("error", fmt.Errorf("save: %w", err).Error()),
		)
	}
}
