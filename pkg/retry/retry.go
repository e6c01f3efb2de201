package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultBaseDelay = 100 * time.Millisecond

// A Policy describes a bounded retry budget: how many attempts are
// made and how long the caller sleeps between them. The zero value
// performs a single attempt without delay.
//
// The wait between attempts blocks the calling goroutine; callers
// must budget for the cumulative worst-case latency.
type Policy struct {
	Attempts    int
	BaseDelay   time.Duration
	Jitter      bool
	ShouldRetry func(error) bool
}

func (p Policy) normalized() Policy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = func(error) bool { return true }
	}
	return p
}

// backoff returns the delay before the next attempt: the base delay
// doubled per completed attempt, plus optional jitter up to half the
// computed delay.
func (p Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.Jitter {
		d += time.Duration(rand.Int64N(int64(d/2) + 1))
	}
	return d
}

// Do runs fn under the policy.
func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult runs fn until it succeeds, returns a non-retryable
// error, or the attempt budget is exhausted. The last error is
// returned in the exhausted case. A canceled context interrupts the
// backoff wait.
func DoWithResult[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var (
		zero, result T
		err          error
	)

	if err = ctx.Err(); err != nil {
		return zero, err
	}

	p = p.normalized()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		result, err = fn()
		if err == nil || !p.ShouldRetry(err) {
			return result, err
		}
		if attempt == p.Attempts {
			return zero, err
		}

		timer.Reset(p.backoff(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
