package blsprotection

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds the thresholds governing auto-blacklisting.
type Config struct {
	// MaxSignaturesPerRequest caps how many signatures one aggregation
	// request may carry before it's flagged excess-signatures.
	MaxSignaturesPerRequest int
	// MinObservationsForFailureRate is the observation floor before the
	// failure-rate rule can fire (default 10 per §4.E).
	MinObservationsForFailureRate int64
	// FailureRateThreshold is the failed/total ratio above which an
	// aggregator is blacklisted (default 0.5).
	FailureRateThreshold float64
	// LatencyThresholdMs is the moving-average latency above which an
	// aggregator is blacklisted.
	LatencyThresholdMs float64
	// BlacklistTTL is how long a blacklist entry lives before cleanup
	// removes it. Zero means entries never expire on their own.
	BlacklistTTL time.Duration
}

// DefaultConfig matches §4.E's stated defaults.
func DefaultConfig() Config {
	return Config{
		MaxSignaturesPerRequest:        256,
		MinObservationsForFailureRate:  10,
		FailureRateThreshold:           0.5,
		LatencyThresholdMs:             2000,
		BlacklistTTL:                   24 * time.Hour,
	}
}

// Protector is the subsystem's owned handle: a cheaply cloneable reference
// around state that lives behind a reader-writer lock.
type Protector struct {
	cfg Config

	mu        sync.RWMutex
	stats     map[aggregatorKey]*Stats
	blacklist map[aggregatorKey]BlacklistEntry
}

func NewProtector(cfg Config) *Protector {
	return &Protector{cfg: cfg, stats: map[aggregatorKey]*Stats{}, blacklist: map[aggregatorKey]BlacklistEntry{}}
}

// IsBlacklisted reports whether aggregator is currently blacklisted. It
// does not itself expire entries; cleanup is the only writer that removes
// them, keeping this a pure read under the shared lock.
func (p *Protector) IsBlacklisted(aggregator common.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.blacklist[aggregator]
	return ok
}

// BlacklistReason returns the recorded reason, if blacklisted.
func (p *Protector) BlacklistReason(aggregator common.Address) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.blacklist[aggregator]
	if !ok {
		return "", false
	}
	return e.Reason, true
}

// StatsFor returns a copy of the current stats for aggregator.
func (p *Protector) StatsFor(aggregator common.Address) Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.stats[aggregator]; ok {
		return *s
	}
	return Stats{}
}

// ValidateAndCheck runs signature-count/duplicate/shape/message-hash
// validation, rejecting immediately if the aggregator is already
// blacklisted.
func (p *Protector) ValidateAndCheck(req AggregationRequest) (error, []SecurityFlag) {
	if p.IsBlacklisted(req.Aggregator) {
		return ErrAggregatorBlacklisted, nil
	}
	return ValidateAggregationRequest(req, p.cfg.MaxSignaturesPerRequest)
}

// RecordResult updates an aggregator's stats after one validation attempt
// and applies the auto-blacklist rule. flags carries any security flags
// raised by ValidateAndCheck for this same attempt, if any.
func (p *Protector) RecordResult(aggregator common.Address, success bool, latencyMs float64, flags []SecurityFlag) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stats[aggregator]
	if !ok {
		s = &Stats{}
		p.stats[aggregator] = s
	}
	s.Total++
	if !success {
		s.Failed++
	}
	if s.Total == 1 {
		s.AvgLatencyMs = latencyMs
	} else {
		s.AvgLatencyMs += (latencyMs - s.AvgLatencyMs) / float64(s.Total)
	}
	if latencyMs > s.MaxLatencyMs {
		s.MaxLatencyMs = latencyMs
	}

	if reason, should := p.shouldBlacklist(*s, flags); should {
		p.blacklistLocked(aggregator, reason)
	}
}

func (p *Protector) shouldBlacklist(s Stats, flags []SecurityFlag) (string, bool) {
	if s.Total >= p.cfg.MinObservationsForFailureRate && s.failureRate() > p.cfg.FailureRateThreshold {
		return "High failure rate", true
	}
	if p.cfg.LatencyThresholdMs > 0 && s.AvgLatencyMs > p.cfg.LatencyThresholdMs {
		return "Latency threshold exceeded", true
	}
	for _, f := range flags {
		switch f {
		case FlagDuplicateSignatures:
			return "Security flag: duplicate signatures", true
		case FlagExcessSignatures:
			return "Security flag: excess signatures", true
		}
	}
	return "", false
}

// Blacklist forcibly blacklists aggregator, e.g. from an operator API.
func (p *Protector) Blacklist(aggregator common.Address, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blacklistLocked(aggregator, reason)
}

// Unblacklist clears a forced or auto-applied blacklist entry, the
// operator override for a false-positive block.
func (p *Protector) Unblacklist(aggregator common.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blacklist, aggregator)
}

func (p *Protector) blacklistLocked(aggregator common.Address, reason string) {
	entry := BlacklistEntry{Reason: reason, BlacklistedAt: time.Now()}
	if p.cfg.BlacklistTTL > 0 {
		entry.ExpiresAt = entry.BlacklistedAt.Add(p.cfg.BlacklistTTL)
	}
	p.blacklist[aggregator] = entry
}

// CleanupExpired removes blacklist entries past their TTL and returns how
// many were removed.
func (p *Protector) CleanupExpired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	removed := 0
	for addr, entry := range p.blacklist {
		if entry.expired(now) {
			delete(p.blacklist, addr)
			removed++
		}
	}
	return removed
}
