package harvest

import (
	"context"
	"time"
)

// Pacer waits between rate-limited calls. Pause returns early with the
// context error when ctx is done.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

type timerPacer struct{}

// RealPacer pauses on wall-clock timers.
func RealPacer() Pacer {
	return timerPacer{}
}

func (timerPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
