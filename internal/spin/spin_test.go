package spin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUntil_PureSpinReachesDeadline(t *testing.T) {
	require := require.New(t)

	for _, d := range []time.Duration{0, 50 * time.Microsecond, 500 * time.Microsecond, 2 * time.Millisecond} {
		start := time.Now()
		require.NoError(Until(context.Background(), start.Add(d), Pure))
		require.GreaterOrEqual(time.Since(start), d)
	}
}

func TestUntil_HybridReachesDeadline(t *testing.T) {
	require := require.New(t)

	for range 20 {
		start := time.Now()
		require.NoError(For(context.Background(), start, 3*time.Millisecond, 500*time.Microsecond))
		require.GreaterOrEqual(time.Since(start), 3*time.Millisecond)
	}
}

func TestUntil_PastDeadlineReturnsImmediately(t *testing.T) {
	require := require.New(t)

	start := time.Now()
	require.NoError(Until(context.Background(), start.Add(-time.Second), time.Millisecond))
	require.Less(time.Since(start), 100*time.Millisecond)
}

func TestUntil_Cancelled(t *testing.T) {
	require := require.New(t)

	for _, window := range []time.Duration{Pure, time.Hour} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		err := Until(ctx, time.Now().Add(time.Hour), window)
		cancel()
		require.ErrorIs(err, context.DeadlineExceeded)
	}
}

func TestUntil_DoneContextWinsOverPastDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, time.Now().Add(-time.Second), Pure)
	require.ErrorIs(t, err, context.Canceled)
}
