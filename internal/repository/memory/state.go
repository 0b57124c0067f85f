// Package memory is a process-local Storage, used by default and in tests.
package memory

import (
	"context"
	"sync"

	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

// StateRepository keeps session state in a map.
type StateRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewStateRepository() *StateRepository {
	return &StateRepository{data: make(map[string][]byte)}
}

func (r *StateRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]
	if !ok {
		return nil, apperrors.NotFound("session state", key)
	}
	return append([]byte(nil), v...), nil
}

func (r *StateRepository) Save(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = append([]byte(nil), value...)
	return nil
}

func (r *StateRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, key)
	return nil
}

// Ping always succeeds; it lets the readiness check treat every driver alike.
func (r *StateRepository) Ping(context.Context) error { return nil }
