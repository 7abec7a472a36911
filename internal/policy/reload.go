package policy

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Manager owns the hot-swappable ruleset. A single atomic.Pointer swap on
// successful reload makes the new ruleset visible to concurrent readers
// without a lock, matching §9's "single atomic pointer swap" note: the
// write side only ever replaces the pointer, never mutates what it points
// to.
type Manager struct {
	current      atomic.Pointer[Ruleset]
	path         string
	interval     time.Duration
	lastReload   atomic.Int64 // unix nanos
	rateLimiter  *RateLimiter
}

func NewManager(path string, reloadInterval time.Duration, rateLimitWindow time.Duration) *Manager {
	m := &Manager{path: path, interval: reloadInterval, rateLimiter: NewRateLimiter(rateLimitWindow)}
	m.current.Store(DefaultRuleset())
	return m
}

// Current returns the currently active ruleset, reloading from disk first
// if the configured interval has elapsed since the last attempt. If the
// file cannot be read or parsed, the existing ruleset is kept; the error
// is discarded and is neither logged nor returned to the caller.
func (m *Manager) Current(now time.Time) *Ruleset {
	last := time.Unix(0, m.lastReload.Load())
	if now.Sub(last) >= m.interval {
		m.lastReload.Store(now.UnixNano())
		if fresh, err := m.load(); err == nil {
			m.current.Store(fresh)
		}
	}
	return m.current.Load()
}

func (m *Manager) load() (*Ruleset, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	var r Ruleset
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.index()
	return &r, nil
}

// Evaluate evaluates sender/gasLimit against the current ruleset, first
// triggering a reload check if due.
func (m *Manager) Evaluate(sender string, gasLimit uint64, now time.Time) Decision {
	r := m.Current(now)
	return Evaluate(r, m.rateLimiter, sender, gasLimit, now)
}

// RateLimiterForMiddleware exposes the manager's per-sender rate limiter
// so the gateway's HTTP middleware can apply the same client-IP-keyed
// limit ahead of full pipeline dispatch.
func (m *Manager) RateLimiterForMiddleware() *RateLimiter {
	return m.rateLimiter
}
