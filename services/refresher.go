package services

import (
	"context"
	"time"
)

type refreshable interface {
	Refresh(ctx context.Context)
}

type refresherLogger interface {
	Debugf(format string, args ...interface{})
}

type Refresher struct {
}

// NewRefresher issues one refresh right away and then keeps the view fresh
// on a fixed interval until the context is cancelled. Interval 0 means
// manual refresh only.
func NewRefresher(ctx context.Context, view refreshable, interval time.Duration, refresherLogger refresherLogger) *Refresher {
	refresher := Refresher{}

	go func() {
		view.Refresh(ctx)

		if interval <= 0 {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				refresherLogger.Debugf("refresher stopped")
				return
			case <-ticker.C:
				view.Refresh(ctx)
			}
		}
	}()

	return &refresher
}
