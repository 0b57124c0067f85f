package store

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OpenFunc builds the store of one session, typically by rehydrating it.
type OpenFunc[S any] func(ctx context.Context, sessionID string) (S, error)

type entry[S any] struct {
	store    S
	lastSeen time.Time
}

// Registry keeps the live store of every recently active session so
// concurrent requests of one session share a single mutex-guarded
// collection. Sessions idle for longer than the idle window are dropped and
// rehydrated from storage on their next request.
type Registry[S any] struct {
	mu        sync.Mutex
	entries   map[string]*entry[S]
	open      OpenFunc[S]
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRegistry[S any](idle time.Duration, open OpenFunc[S]) *Registry[S] {
	return &Registry[S]{
		entries: make(map[string]*entry[S]),
		open:    open,
		idle:    idle,
		now:     time.Now,
	}
}

// Get returns the store of sessionID, opening it on first use.
func (r *Registry[S]) Get(ctx context.Context, sessionID string) (S, error) {
	if s, ok := r.lookup(sessionID); ok {
		return s, nil
	}

	// Open outside the lock so a slow storage read does not stall other
	// sessions. If two requests race, the first one stored wins.
	opened, err := r.open(ctx, sessionID)
	if err != nil {
		var zero S
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.now()
		return e.store, nil
	}
	r.entries[sessionID] = &entry[S]{store: opened, lastSeen: r.now()}
	return opened, nil
}

// Len reports how many sessions are cached.
func (r *Registry[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Collector exposes Len as the storefront_live_sessions gauge for kind
// ("cart", "wishlist").
func (r *Registry[S]) Collector(kind string) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "storefront",
		Name:        "live_sessions",
		Help:        "Sessions with a store held in memory.",
		ConstLabels: prometheus.Labels{"kind": kind},
	}, func() float64 { return float64(r.Len()) })
}

func (r *Registry[S]) lookup(sessionID string) (S, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.idle > 0 && now.Sub(r.lastSweep) >= r.idle {
		for id, e := range r.entries {
			if now.Sub(e.lastSeen) >= r.idle {
				delete(r.entries, id)
			}
		}
		r.lastSweep = now
	}

	e, ok := r.entries[sessionID]
	if !ok {
		var zero S
		return zero, false
	}
	e.lastSeen = now
	return e.store, true
}
