package authorization

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
	"github.com/aastar-community/relay-gateway/internal/validation"
)

// nonceWarnThreshold is the "implausibly large nonce" warning boundary.
const nonceWarnThreshold = 1_000_000

// defaultReputationScore is used when a sender has no recorded score.
const defaultReputationScore = 75

// Enabled toggles which of the eight checks run; a false entry makes its
// check vacuously pass. Absent entries default to enabled.
type Enabled map[CheckName]bool

func (e Enabled) isEnabled(name CheckName) bool {
	if e == nil {
		return true
	}
	v, ok := e[name]
	return !ok || v
}

// Config bundles every piece of policy and every collaborator the
// authorization chain consults.
type Config struct {
	Enabled Enabled

	Whitelist map[common.Address]bool
	Blacklist map[common.Address]bool

	RateLimiter       RateLimiter
	VerifiedPaymasters map[common.Address]bool

	BalanceProvider    BalanceProvider
	MinBalance         *big.Int
	ReputationProvider ReputationProvider
	MinReputationScore int

	MaxFeeCeiling *big.Int
}

// Authorize runs the chain from §4.C against op. The rate-limit check is
// keyed by the sender address only; clientIP is accepted but no check
// reads it.
func Authorize(ctx context.Context, op useroperation.UserOperation, clientIP string, cfg Config) Decision {
	var checks []CheckResult

	checks = append(checks, checkWhitelist(cfg, op.Sender()))
	checks = append(checks, checkBlacklist(cfg, op.Sender()))
	checks = append(checks, checkRateLimit(ctx, cfg, op.Sender()))
	checks = append(checks, checkPaymaster(cfg, op))
	checks = append(checks, checkBalance(ctx, cfg, op.Sender()))
	checks = append(checks, checkNonce(op.Nonce()))
	checks = append(checks, checkFeeCap(cfg, op))
	checks = append(checks, checkReputation(ctx, cfg, op.Sender()))

	return fold(checks)
}

func pass(name CheckName) CheckResult {
	return CheckResult{Name: name, Passed: true, Severity: validation.SeverityInfo}
}

func checkWhitelist(cfg Config, sender common.Address) CheckResult {
	if !cfg.Enabled.isEnabled(CheckWhitelist) || len(cfg.Whitelist) == 0 {
		return pass(CheckWhitelist)
	}
	if cfg.Whitelist[sender] {
		return pass(CheckWhitelist)
	}
	return CheckResult{Name: CheckWhitelist, Passed: false, Severity: validation.SeverityError, Message: "sender is not in the configured whitelist"}
}

func checkBlacklist(cfg Config, sender common.Address) CheckResult {
	if !cfg.Enabled.isEnabled(CheckBlacklist) {
		return pass(CheckBlacklist)
	}
	if cfg.Blacklist[sender] {
		return CheckResult{Name: CheckBlacklist, Passed: false, Severity: validation.SeverityCritical, Message: "sender is blacklisted"}
	}
	return pass(CheckBlacklist)
}

func checkRateLimit(ctx context.Context, cfg Config, sender common.Address) CheckResult {
	if !cfg.Enabled.isEnabled(CheckRateLimit) || cfg.RateLimiter == nil {
		return pass(CheckRateLimit)
	}
	allowed, _, err := cfg.RateLimiter.Allow(ctx, sender.Hex())
	if err != nil {
		return CheckResult{Name: CheckRateLimit, Passed: false, Severity: validation.SeverityError, Message: "rate limiter unavailable: " + err.Error()}
	}
	if !allowed {
		return CheckResult{Name: CheckRateLimit, Passed: false, Severity: validation.SeverityError, Message: "sender exceeded the rate limit window"}
	}
	return pass(CheckRateLimit)
}

func checkPaymaster(cfg Config, op useroperation.UserOperation) CheckResult {
	if !cfg.Enabled.isEnabled(CheckPaymaster) {
		return pass(CheckPaymaster)
	}
	addr, _, has := op.Paymaster()
	if !has {
		return pass(CheckPaymaster)
	}
	if cfg.VerifiedPaymasters[addr] {
		return pass(CheckPaymaster)
	}
	return CheckResult{Name: CheckPaymaster, Passed: false, Severity: validation.SeverityWarning, Message: "paymaster is not in the verified set"}
}

func checkBalance(ctx context.Context, cfg Config, sender common.Address) CheckResult {
	if !cfg.Enabled.isEnabled(CheckBalance) || cfg.BalanceProvider == nil || cfg.MinBalance == nil {
		return pass(CheckBalance)
	}
	balance, err := cfg.BalanceProvider.Balance(ctx, sender)
	if err != nil {
		return CheckResult{Name: CheckBalance, Passed: false, Severity: validation.SeverityError, Message: "balance lookup failed: " + err.Error()}
	}
	if balance.Cmp(cfg.MinBalance) < 0 {
		return CheckResult{Name: CheckBalance, Passed: false, Severity: validation.SeverityError, Message: "sender balance below configured minimum"}
	}
	return pass(CheckBalance)
}

func checkNonce(nonce *big.Int) CheckResult {
	if nonce != nil && nonce.Cmp(big.NewInt(nonceWarnThreshold)) > 0 {
		return CheckResult{Name: CheckNonce, Passed: true, Severity: validation.SeverityWarning, Message: "nonce is implausibly large"}
	}
	return pass(CheckNonce)
}

func checkFeeCap(cfg Config, op useroperation.UserOperation) CheckResult {
	if !cfg.Enabled.isEnabled(CheckFeeCap) || cfg.MaxFeeCeiling == nil {
		return pass(CheckFeeCap)
	}
	if op.MaxFeePerGas() != nil && op.MaxFeePerGas().Cmp(cfg.MaxFeeCeiling) > 0 {
		return CheckResult{Name: CheckFeeCap, Passed: false, Severity: validation.SeverityError, Message: "max_fee_per_gas exceeds configured ceiling"}
	}
	if op.MaxPriorityFeePerGas() != nil && op.MaxPriorityFeePerGas().Cmp(cfg.MaxFeeCeiling) > 0 {
		return CheckResult{Name: CheckFeeCap, Passed: false, Severity: validation.SeverityError, Message: "max_priority_fee_per_gas exceeds configured ceiling"}
	}
	return pass(CheckFeeCap)
}

func checkReputation(ctx context.Context, cfg Config, sender common.Address) CheckResult {
	if !cfg.Enabled.isEnabled(CheckReputation) || cfg.ReputationProvider == nil {
		return pass(CheckReputation)
	}
	score, found := cfg.ReputationProvider.Score(ctx, sender)
	if !found {
		score = defaultReputationScore
	}
	min := cfg.MinReputationScore
	if min == 0 {
		min = defaultReputationScore
	}
	if score < min {
		return CheckResult{Name: CheckReputation, Passed: false, Severity: validation.SeverityError, Message: "sender reputation below configured minimum"}
	}
	return pass(CheckReputation)
}
