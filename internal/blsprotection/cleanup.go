package blsprotection

import (
	"context"
	"time"
)

// CleanupInterval is the periodic cooperative cleanup cadence from §4.E.
const CleanupInterval = 5 * time.Minute

// RunCleanupLoop runs CleanupExpired every interval until ctx is
// cancelled. Intended to be started once as a goroutine by the caller that
// owns the Protector's lifecycle.
func (p *Protector) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CleanupExpired()
		}
	}
}
