// Package spin waits for monotonic deadlines with sub-millisecond accuracy.
//
// A plain busy-wait burns one CPU core for the whole interval. Giving a non-zero
// window makes Until sleep on a pooled timer until the deadline is window away and
// spin only for the remainder; the returned time is never before the deadline
// in either mode.
package spin

import (
	"context"
	"sync"
	"time"
)

// Pure disables the sleep phase, the wait spins for its whole duration.
const Pure time.Duration = 0

// Until blocks until deadline has been reached or ctx is done. A context that is
// already done wins over a deadline that has already passed.
//
// With window == Pure it spins on the monotonic clock for the full interval.
// Otherwise it sleeps until deadline-window and spins afterwards.
// It returns ctx.Err() when the context ends first.
func Until(ctx context.Context, deadline time.Time, window time.Duration) error {
	done := ctx.Done()
	select {
	case <-done:
		return ctx.Err()
	default:
	}

	if window > Pure {
		if d := time.Until(deadline) - window; d > 0 {
			t := getTimer(d)
			select {
			case <-done:
				putTimer(t)
				return ctx.Err()
			case <-t.C:
				putTimer(t)
			}
		}
	}

	for time.Now().Before(deadline) {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
	}

	return nil
}

// For is Until with a deadline of start+d.
func For(ctx context.Context, start time.Time, d time.Duration, window time.Duration) error {
	return Until(ctx, start.Add(d), window)
}

var timerPool sync.Pool

func getTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		t.Reset(d)
		return t
	}

	return time.NewTimer(d)
}

// putTimer stops t and drains a pending tick before pooling it.
func putTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
