package client

import (
	"context"
	"time"
)

// Clock provides time operations (injectable for testing)
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using actual system time
type realClock struct{}

// Now returns the current system time
func (realClock) Now() time.Time {
	return time.Now()
}

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext is the default Sleeper.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
