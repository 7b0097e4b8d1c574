// Package retry runs calls to external services with a per attempt timeout
// and exponential backoff between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds the attempts of one call.
type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries int

	// Timeout bounds each attempt. Zero means no per attempt timeout.
	Timeout time.Duration

	// Backoff is the wait after the first failed attempt; it doubles after
	// each further failure.
	Backoff time.Duration
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// exhausted or ctx is done. The last error of fn is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	// 1x, 2x, 4x, ... without jitter
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Backoff
	b.RandomizationFactor = 0
	b.Multiplier = 2

	var last error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		last = call(ctx, p.Timeout, fn)
		return struct{}{}, last
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(max(p.Retries, 0)+1)),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		return nil
	}

	var perm *backoff.PermanentError
	if errors.As(last, &perm) {
		return perm.Err
	}

	// a done ctx ends the loop with the ctx error, the caller wants the
	// error of the service
	if last != nil {
		return last
	}

	return err
}

func call(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
