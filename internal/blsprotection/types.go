// Package blsprotection implements the BLS Aggregator Protection Subsystem
// (§4.E): per-aggregator stats and an auto-blacklist, guarding the gateway
// against misbehaving signature aggregators. Reads (validation path) are
// frequent and non-exclusive; writes (stat updates, blacklist mutation,
// cleanup) are brief and exclusive, so the state lives behind a single
// reader-writer lock with critical sections scoped to exclude any
// suspension, per the shared-mutable-state re-architecture note.
package blsprotection

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrAggregatorBlacklisted  = errors.New("blsprotection: aggregator is blacklisted")
	ErrInvalidSignatureShape  = errors.New("blsprotection: signature shape invalid")
	ErrZeroMessageHash        = errors.New("blsprotection: message hash must not be zero")
	ErrTooManySignatures      = errors.New("blsprotection: signature count exceeds configured maximum")
	ErrDuplicateSignatures    = errors.New("blsprotection: duplicate signatures in aggregation request")
)

const (
	blsSignatureMinLen = 48
	blsSignatureMaxLen = 96
)

// SecurityFlag names a structural violation found while validating an
// aggregation request, independent of the ordinary error return — it's
// what feeds the "security flag raised" auto-blacklist trigger.
type SecurityFlag string

const (
	FlagDuplicateSignatures SecurityFlag = "duplicate-signatures"
	FlagExcessSignatures    SecurityFlag = "excess-signatures"
)

// Stats is the per-aggregator running tally behind the subsystem's lock.
type Stats struct {
	Total        int64
	Failed       int64
	AvgLatencyMs float64
	MaxLatencyMs float64
}

func (s Stats) failureRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failed) / float64(s.Total)
}

// BlacklistEntry records why and when an aggregator was blacklisted.
type BlacklistEntry struct {
	Reason        string
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}

func (e BlacklistEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// aggregatorKey keys the stats/blacklist maps; common.Address is already
// comparable so it's used directly.
type aggregatorKey = common.Address
