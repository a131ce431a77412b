package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithExponentialBackoff_SucceedsFirstTry(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithExponentialBackoff_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return errors.New("always fails")
	},
		WithMaxRetries(2),
		WithInitialDelay(time.Millisecond),
	)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "always fails")
}

func TestWithExponentialBackoff_FatalNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(errors.New("bad input"))
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
	)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "bad input")
}

func TestWithExponentialBackoff_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("transient")
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Hour),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithFixedInterval_PollsUntilDone(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithFixedInterval(context.Background(), func() error {
		calls++
		if calls < 4 {
			return errors.New("not ready")
		}
		return nil
	}, time.Millisecond, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestWithFixedInterval_AttemptBudget(t *testing.T) {
	t.Parallel()
	calls := 0
	err := WithFixedInterval(context.Background(), func() error {
		calls++
		return errors.New("never ready")
	}, time.Millisecond, 3)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.True(t, IsFatal(Fatal(errors.New("wrapped"))))

	var fatalErr *FatalError
	require.ErrorAs(t, Fatal(errors.New("inner")), &fatalErr)
	assert.Equal(t, "inner", fatalErr.Error())
}

func TestFatal_NilPassthrough(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Fatal(nil))
}
