package clock

import (
	"context"
	"sync"
	"time"
)

// Clock allows injecting time in domain/services. Sleep is context-aware so
// long protocol waits (commitment maturation, bridge polling) stay cancellable
// and can be skipped in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock that starts at the given instant and advances only
// when Sleep is called (useful for tests).
func NewFixed(t time.Time) Clock {
	return &fixedClock{now: t.UTC()}
}

func (f *fixedClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixedClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
	return nil
}
