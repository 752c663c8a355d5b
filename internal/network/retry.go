package network

import (
	"context"
	"errors"
	"time"
)

// Policy controls Retry. A zero MaxAttempts falls back to DefaultPolicy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Retry returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry invokes op up to p.MaxAttempts times, sleeping BaseDelay*2^(attempt-1)
// after each failed attempt. The last error is returned once attempts run out.
func Retry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			return zero, lastErr
		}

		delay := p.BaseDelay * time.Duration(1<<(attempt-1))
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		}
	}
	return zero, lastErr
}
