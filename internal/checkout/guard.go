package checkout

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum spacing between order submissions.
const DefaultCooldown = 3 * time.Second

// SubmissionGuard serializes order placement within one checkout session.
// A submission is refused while another is in flight, or when the previous
// attempt started less than the cooldown ago.
type SubmissionGuard struct {
	mu          sync.Mutex
	cooldown    time.Duration
	lastAttempt time.Time
	inFlight    bool
}

// NewSubmissionGuard creates a guard with the given cooldown.
func NewSubmissionGuard(cooldown time.Duration) *SubmissionGuard {
	return &SubmissionGuard{cooldown: cooldown}
}

// TryAcquire claims the guard for a submission starting at now.
func (g *SubmissionGuard) TryAcquire(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return false
	}
	if !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) < g.cooldown {
		return false
	}
	g.inFlight = true
	g.lastAttempt = now
	return true
}

// Release ends the in-flight submission. The cooldown keeps running from
// the attempt's start.
func (g *SubmissionGuard) Release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// InFlight reports whether a submission holds the guard.
func (g *SubmissionGuard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// LastAttempt returns when the last accepted submission started.
func (g *SubmissionGuard) LastAttempt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAttempt
}
