package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fxsml/dispatch"
)

// ErrRetryExhausted is returned, wrapping the last fault, when every attempt
// of a retried request failed.
var ErrRetryExhausted = errors.New("dispatch: retry attempts exhausted")

// ShouldRetryFunc determines whether an error should trigger a retry attempt.
type ShouldRetryFunc func(error) bool

// ShouldRetry creates a function that retries on specific errors.
// If no errors are specified, all errors trigger retries.
// If errors are specified, only matching errors (using errors.Is) trigger retries.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(err error) bool {
			return true
		}
	}
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// ShouldNotRetry creates a function that skips retries on specific errors.
// If no errors are specified, no errors trigger retries.
func ShouldNotRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(err error) bool {
			return false
		}
	}
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return false
			}
		}
		return true
	}
}

// RetryConfig configures the Retry behavior. Zero fields use default values.
type RetryConfig struct {
	// ShouldRetry determines which errors trigger retry attempts.
	// Default: retry all errors.
	ShouldRetry ShouldRetryFunc

	// Backoff creates the policy producing the wait duration between the
	// attempts of one request. Default: 1 second with ±20% jitter.
	Backoff func() backoff.BackOff

	// MaxAttempts limits the total number of attempts, including the first.
	// Default: 3. Negative values allow unlimited attempts.
	MaxAttempts int

	// Timeout limits the time spent on all attempts combined.
	// Default: 1 minute. Negative values disable the limit.
	Timeout time.Duration
}

func (c RetryConfig) parse() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = ShouldRetry()
	}
	if c.Backoff == nil {
		c.Backoff = defaultBackoff
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.Timeout == 0 {
		c.Timeout = time.Minute
	}
	return c
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 1
	b.RandomizationFactor = 0.2
	return b
}

// Retry re-invokes the rest of the pipeline while it fails with a retryable
// error. Non-retryable errors are returned unchanged; when attempts or time
// run out the last error is returned wrapped in ErrRetryExhausted.
func Retry[Req, Res any](cfg RetryConfig) dispatch.BehaviorFunc[Req, Res] {
	cfg = cfg.parse()
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		opts := []backoff.RetryOption{backoff.WithBackOff(cfg.Backoff())}
		if cfg.MaxAttempts > 0 {
			opts = append(opts, backoff.WithMaxTries(uint(cfg.MaxAttempts)))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, backoff.WithMaxElapsedTime(cfg.Timeout))
		} else {
			// Zero lifts the elapsed time limit backoff.Retry applies by default.
			opts = append(opts, backoff.WithMaxElapsedTime(0))
		}

		var fault error
		attempts := 0
		res, err := backoff.Retry(ctx, func() (Res, error) {
			attempts++
			res, err := next()
			if err != nil && !cfg.ShouldRetry(err) {
				fault = err
				return res, backoff.Permanent(err)
			}
			return res, err
		}, opts...)

		switch {
		case err == nil:
			return res, nil
		case fault != nil:
			return res, fault
		case ctx.Err() != nil:
			return res, err
		}
		return res, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, err)
	}
}
