package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TemirB/order-lookup/internal/domain"
)

func isTimeout(err error) bool { return errors.Is(err, domain.ErrTimeout) }

// runWithTimeout runs fn on its own goroutine with a context that is never
// cancelled and waits at most d for it. On timeout the store call keeps
// running and its result is dropped.
func runWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("store call panicked: %v", p)
			}
			done <- r
		}()
		r.v, r.err = fn(detached)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %v", domain.ErrTimeout, d)
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: caller gone: %v", domain.ErrTimeout, ctx.Err())
	}
}
