package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/pkg/logger"
)

type searchCall struct {
	category, text, session string
}

type searchRecorder struct {
	mu    sync.Mutex
	calls []searchCall
	n     atomic.Int32
}

func (r *searchRecorder) search(ctx context.Context, category, text string) []domain.SearchHit {
	r.n.Add(1)
	r.mu.Lock()
	r.calls = append(r.calls, searchCall{category, text, logger.SessionIDFromContext(ctx)})
	r.mu.Unlock()
	return []domain.SearchHit{{Name: text}}
}

func TestSearchDebouncer_CollapsesBurstToTrailingCall(t *testing.T) {
	rec := &searchRecorder{}
	d := NewSearchDebouncer(40*time.Millisecond, rec.search)
	ctx := logger.WithSessionID(context.Background(), "sess-1")

	var wg sync.WaitGroup
	results := make([][]domain.SearchHit, 3)
	for i, text := range []string{"h", "ho", "hoo"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := d.Search(ctx, "sess-1", "All Categories", text)
			assert.NoError(t, err)
			results[i] = res
		}()
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, int32(1), rec.n.Load())
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "hoo", rec.calls[0].text)
	assert.Equal(t, "sess-1", rec.calls[0].session)
	for _, res := range results {
		assert.Equal(t, []domain.SearchHit{{Name: "hoo"}}, res)
	}
	assert.Zero(t, d.Pending())
}

func TestSearchDebouncer_SessionsAreIndependent(t *testing.T) {
	rec := &searchRecorder{}
	d := NewSearchDebouncer(20*time.Millisecond, rec.search)

	var wg sync.WaitGroup
	for _, sid := range []string{"sess-a", "sess-b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Search(context.Background(), sid, "", "tee")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(2), rec.n.Load())
}

func TestSearchDebouncer_CancelledCallerDoesNotCancelSearch(t *testing.T) {
	rec := &searchRecorder{}
	d := NewSearchDebouncer(30*time.Millisecond, rec.search)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Search(ctx, "sess-1", "", "cap")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool { return rec.n.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSearchDebouncer_ZeroWindowCallsThrough(t *testing.T) {
	rec := &searchRecorder{}
	d := NewSearchDebouncer(0, rec.search)

	res, err := d.Search(context.Background(), "sess-1", "", "bag")
	require.NoError(t, err)
	assert.Equal(t, []domain.SearchHit{{Name: "bag"}}, res)
	assert.Zero(t, d.Pending())
}
