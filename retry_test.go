package prospect_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("returns nil on first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := prospect.Retry(context.Background(), delays, nil, func(context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var logged []int
		err := prospect.Retry(context.Background(), delays, func(attempt int, _ error) {
			logged = append(logged, attempt)
		}, func(context.Context) error {
			calls++
			if calls < 3 {
				return prospect.Errorf(prospect.EUNAVAILABLE, "busy")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 3}, logged)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := prospect.Retry(context.Background(), delays, nil, func(context.Context) error {
			calls++
			return errors.New("connection reset")
		})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := prospect.Retry(context.Background(), delays, nil, func(context.Context) error {
			calls++
			return prospect.Errorf(prospect.EAUTH, "bad password")
		})

		assert.Equal(t, prospect.EAUTH, prospect.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := prospect.Retry(ctx, []time.Duration{time.Hour}, nil, func(context.Context) error {
			return errors.New("boom")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
