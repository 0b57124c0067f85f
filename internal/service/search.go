package service

import (
	"context"
	"sync"
	"time"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// DefaultSearchDebounce is the quiet period before a search is sent.
const DefaultSearchDebounce = 500 * time.Millisecond

// SearchFunc runs one search against the backend.
type SearchFunc func(ctx context.Context, category, text string) []domain.SearchHit

type pendingSearch struct {
	timer    *time.Timer
	ctx      context.Context
	category string
	text     string
	fired    bool
	done     chan struct{}
	result   []domain.SearchHit
}

// SearchDebouncer collapses the searches of one session that arrive within
// the window into a single trailing search. Every caller of the burst gets
// the trailing result. A search already sent is never aborted; a caller
// whose context ends stops waiting but does not cancel the search.
type SearchDebouncer struct {
	window time.Duration
	search SearchFunc

	mu      sync.Mutex
	pending map[string]*pendingSearch
}

func NewSearchDebouncer(window time.Duration, search SearchFunc) *SearchDebouncer {
	return &SearchDebouncer{
		window:  window,
		search:  search,
		pending: make(map[string]*pendingSearch),
	}
}

func (d *SearchDebouncer) Search(ctx context.Context, sessionID, category, text string) ([]domain.SearchHit, error) {
	if d.window <= 0 {
		return d.search(ctx, category, text), nil
	}

	d.mu.Lock()
	p, ok := d.pending[sessionID]
	if !ok {
		p = &pendingSearch{done: make(chan struct{})}
		d.pending[sessionID] = p
		p.timer = time.AfterFunc(d.window, func() { d.fire(sessionID, p) })
	} else {
		p.timer.Reset(d.window)
	}
	// The search runs after this request may have returned, so it keeps the
	// request values (session, logger) but not its cancellation.
	p.ctx = context.WithoutCancel(ctx)
	p.category, p.text = category, text
	d.mu.Unlock()

	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *SearchDebouncer) fire(sessionID string, p *pendingSearch) {
	d.mu.Lock()
	if p.fired {
		d.mu.Unlock()
		return
	}
	p.fired = true
	if d.pending[sessionID] == p {
		delete(d.pending, sessionID)
	}
	ctx, category, text := p.ctx, p.category, p.text
	d.mu.Unlock()

	p.result = d.search(ctx, category, text)
	close(p.done)
}

// Pending reports how many sessions have a search waiting to fire.
func (d *SearchDebouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
