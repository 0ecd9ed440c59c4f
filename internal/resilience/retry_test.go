package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		Multiplier:     2.0,
		ShouldRetry:    func(error) bool { return true },
	}
}

func TestDoValSucceedsAfterRetries(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", eris.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("still failing")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "still failing")
}

func TestDoValStopsOnNonRetryable(t *testing.T) {
	cfg := fastConfig(5)
	cfg.ShouldRetry = func(err error) bool { return false }

	calls := 0
	_, err := DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValPredicateSelectsErrors(t *testing.T) {
	retryable := eris.New("retry me")
	permanent := eris.New("give up")
	cfg := fastConfig(5)
	cfg.ShouldRetry = func(err error) bool { return err == retryable }

	calls := 0
	_, err := DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, retryable
		}
		return 0, permanent
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, permanent, err)
}

func TestDoValHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := DoVal(ctx, fastConfig(100), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, eris.New("failing while canceled")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValOnRetryHook(t *testing.T) {
	var attempts []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_, _ = DoVal(context.Background(), cfg, func(ctx context.Context) (int, error) {
		return 0, eris.New("always fails")
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return eris.New("once")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBackoffForSchedule(t *testing.T) {
	cfg := withDefaults(RetryConfig{InitialBackoff: 5 * time.Second, Multiplier: 2.0})
	assert.Equal(t, 5*time.Second, backoffFor(0, cfg))
	assert.Equal(t, 10*time.Second, backoffFor(1, cfg))
	assert.Equal(t, 20*time.Second, backoffFor(2, cfg))

	cfg = withDefaults(RetryConfig{InitialBackoff: 20 * time.Second, Multiplier: 2.0})
	assert.Equal(t, 20*time.Second, backoffFor(0, cfg))
	assert.Equal(t, 40*time.Second, backoffFor(1, cfg))
	// Capped by MaxBackoff default.
	assert.Equal(t, 60*time.Second, backoffFor(2, cfg))
}

func TestBackoffForJitterStaysInBand(t *testing.T) {
	cfg := withDefaults(RetryConfig{
		InitialBackoff: 10 * time.Second,
		Multiplier:     1.0,
		JitterFraction: 0.2,
	})
	for i := 0; i < 50; i++ {
		d := backoffFor(0, cfg)
		assert.GreaterOrEqual(t, d, 8*time.Second)
		assert.LessOrEqual(t, d, 12*time.Second)
	}
}
