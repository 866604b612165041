package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

type retrying struct {
	next Provider
	c    RetryConfig
}

// WithRetry retries transient failures with jittered exponential backoff.
// An invalid response is retried once; context errors never are.
func WithRetry(p Provider, c RetryConfig) Provider {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	return &retrying{next: p, c: c}
}

func (r *retrying) ModelID() string { return r.next.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err            error
		retriedInvalid bool
	)
	wait := r.c.InitialWait

	for attempt := 1; ; attempt++ {
		var resp *Response
		resp, err = r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		if attempt >= r.c.MaxAttempts || !retryable(err, &retriedInvalid) {
			return nil, err
		}

		d := wait
		var rl *ErrRateLimit
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			d = rl.RetryAfter
		}
		d += time.Duration(rand.Int64N(int64(d)/5 + 1))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}

		wait = min(wait*2, r.c.MaxWait)
	}
}

func retryable(err error, retriedInvalid *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if *retriedInvalid {
			return false
		}
		*retriedInvalid = true
	}
	return true
}
