package riskanalysis

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

const nonceWarnThreshold = 1_000_000

// Config holds the trusted/blacklisted sets and the cache backing
// Analyze's per-sender memoization.
type Config struct {
	Blacklisted map[common.Address]bool
	Trusted     map[common.Address]bool
	Cache       *Cache
}

// NewDefaultConfig builds a Config with a fresh 10k-entry, 5-minute-TTL
// cache and empty trust sets.
func NewDefaultConfig() Config {
	return Config{
		Blacklisted: map[common.Address]bool{},
		Trusted:     map[common.Address]bool{},
		Cache:       NewCache(10_000, 5*time.Minute),
	}
}

// Analyze scores op's sender per §4.D. A hard-blacklisted sender
// short-circuits to risk 100 before the cache and the analytical steps;
// otherwise risk accumulates from the selector table, shape heuristics,
// paymaster use, pattern scan, and nonce plausibility, and a trusted
// sender then has 20 subtracted from that total (floored at 0).
func Analyze(op useroperation.UserOperation, cfg Config) Result {
	sender := op.Sender()

	if cfg.Blacklisted[sender] {
		return Result{Risk: 100, Decision: DecisionBlock, Findings: []Finding{{Kind: "hard_blacklist", Severity: SeverityCritical, Detail: "sender is hard-blacklisted"}}}
	}

	if cfg.Cache != nil {
		if cached, ok := cfg.Cache.Get(sender); ok {
			return cached
		}
	}

	var findings []Finding
	risk := 0

	callData := op.CallData()
	if f := inspectSelector(callData); f != nil {
		findings = append(findings, *f)
		risk += int(f.Severity) * 10
	}
	if f := inspectOversize(callData); f != nil {
		findings = append(findings, *f)
		risk += int(f.Severity) * 10
	}
	if f := inspectPaddingAttack(callData); f != nil {
		findings = append(findings, *f)
		risk += int(f.Severity) * 10
	}
	if _, _, hasPaymaster := op.Paymaster(); hasPaymaster {
		findings = append(findings, Finding{Kind: "paymaster_used", Severity: SeverityLow, Detail: "op is sponsored by a paymaster"})
		risk += int(SeverityLow) * 10
	}
	for _, f := range scanMaliciousPatterns(callData) {
		findings = append(findings, f)
		risk += int(f.Severity) * 10
	}
	if op.Nonce() != nil && op.Nonce().Cmp(big.NewInt(nonceWarnThreshold)) > 0 {
		findings = append(findings, Finding{Kind: "implausible_nonce", Severity: SeverityModerate, Detail: "nonce exceeds the plausibility threshold"})
		risk += int(SeverityModerate) * 10
	}

	if cfg.Trusted[sender] {
		risk -= 20
	}
	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}

	result := Result{Risk: risk, Decision: DecisionAllow, Findings: findings}
	if cfg.Cache != nil {
		cfg.Cache.Put(sender, result)
	}
	return result
}
