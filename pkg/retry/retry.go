package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how an adapter call is retried
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Retryable classifies errors; nil means everything not marked Permanent
	Retryable func(error) bool
	// Timer waits between attempts; nil uses a real timer
	Timer backoff.Timer
}

// DefaultPolicy is 4 attempts backing off from 500ms to 8s
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    4,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2,
	}
}

// Permanent marks err so that Do stops retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// BackOff builds the schedule for one call of Do
func (p Policy) BackOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	if p.InitialBackoff > 0 {
		exp.InitialInterval = p.InitialBackoff
	}
	if p.MaxBackoff > 0 {
		exp.MaxInterval = p.MaxBackoff
	}
	if p.Multiplier >= 1 {
		exp.Multiplier = p.Multiplier
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do runs fn until it succeeds, returns a non-retryable error, attempts run
// out, or ctx is done. The last error fn returned is passed back.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	var last error
	err := backoff.RetryNotifyWithTimer(func() error {
		last = fn(ctx)
		if last != nil && !p.retryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}, p.BackOff(ctx), nil, p.Timer)
	if err == nil {
		return nil
	}
	if last != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = last
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

func (p Policy) retryable(err error) bool {
	if IsPermanent(err) || errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return true
}

// Temporary is a Retryable predicate: errors that report Temporary() are
// trusted, everything else is retried
func Temporary(err error) bool {
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}
