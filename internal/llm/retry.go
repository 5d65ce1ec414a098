package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/joseph-ayodele/uniformat-db/constants"
)

// RetryPolicy bounds retries of rate-limited calls. Attempt n (0-based) that hits a
// rate limit waits InitialDelay * 2^n before the next attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryPolicy is five attempts starting at five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: constants.DefaultMaxRetries, InitialDelay: constants.DefaultInitialDelay}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = constants.DefaultMaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = constants.DefaultInitialDelay
	}
	return p
}

// backOff builds a jitter-free doubling schedule capped at MaxAttempts-1 retries.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = 24 * time.Hour
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// Delays returns the full sleep schedule a policy produces when every attempt is rate limited.
func (p RetryPolicy) Delays() []time.Duration {
	p = p.normalized()
	out := make([]time.Duration, 0, p.MaxAttempts-1)
	d := p.InitialDelay
	for i := 1; i < p.MaxAttempts; i++ {
		out = append(out, d)
		d *= 2
	}
	return out
}
