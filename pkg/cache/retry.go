package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrUnavailable marks backend failures that may pass on a later attempt,
// such as timeouts and refused or dropped connections.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff controls how transient backend failures are retried. The delay
// doubles after every failed attempt up to Max.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultBackoff is the policy of [RedisCache]. Cache lookups sit on the
// request path, so it gives up quickly and lets the caller recompute.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 50 * time.Millisecond, Max: 400 * time.Millisecond}

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient reports whether err is a backend failure worth retrying.
func Transient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Do calls fn until it succeeds, returns an error that is not [Transient],
// runs out of attempts or ctx ends. It returns the last error of fn, or the
// context's error.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Initial
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !Transient(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		if delay *= 2; b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
}

// markTransient wraps network failures as transient [ErrUnavailable] errors
// and passes everything else through.
func markTransient(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, net.ErrClosed) {
		return transientError{fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return err
}
