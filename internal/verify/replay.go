package verify

import (
	"time"

	"nestquest/internal/domain"
)

// DefaultReplayWindow is the accepted distance between a claimed timestamp and now.
const DefaultReplayWindow = 30 * time.Second

// ReplayGuard rejects timestamps that are stale or too far in the future.
type ReplayGuard struct {
	window time.Duration
	now    func() time.Time
}

// NewReplayGuard creates a guard with the given window. A non-positive window uses the default.
func NewReplayGuard(window time.Duration, now func() time.Time) *ReplayGuard {
	if window <= 0 {
		window = DefaultReplayWindow
	}
	if now == nil {
		now = time.Now
	}
	return &ReplayGuard{window: window, now: now}
}

// Check accepts claimedMs iff |now - claimed| <= window.
func (g *ReplayGuard) Check(claimedMs int64) error {
	nowMs := g.now().UnixMilli()

	delta := nowMs - claimedMs
	if delta < 0 {
		delta = -delta
	}

	if delta > g.window.Milliseconds() {
		return domain.Errorf(domain.KindReplayRejected, "timestamp %dms away from now, window %s", nowMs-claimedMs, g.window)
	}
	return nil
}
