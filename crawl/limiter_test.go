package crawl_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements prospect.Limiter interface", func(t *testing.T) {
		t.Parallel()
		var _ prospect.Limiter = crawl.NewLimiter(time.Second)
	})

	t.Run("delays the first request", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(100 * time.Millisecond)

		start := time.Now()
		err := limiter.Wait(context.Background())

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("delays in full after a slow request", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(100 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background()))

		// Simulates a fetch that outlasts the delay.
		time.Sleep(150 * time.Millisecond)

		start := time.Now()
		err := limiter.Wait(context.Background())

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("zero delay never blocks", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(0)

		start := time.Now()
		for range 100 {
			require.NoError(t, limiter.Wait(context.Background()))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("negative delay never blocks", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(-time.Second)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := limiter.Wait(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("zero delay reports a cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, crawl.NewLimiter(0).Wait(ctx), context.Canceled)
	})

	t.Run("concurrent requests all complete", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewLimiter(10 * time.Millisecond)

		var wg sync.WaitGroup
		var completed atomic.Int32

		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background()); err == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load(), "all requests should complete")
	})
}
