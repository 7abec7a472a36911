// Package authorization implements the Authorization Engine (§4.C): a
// fixed, individually switchable chain of checks run against a parsed
// UserOperation and an optional client IP, producing an authorized/blocked
// decision plus a score and per-check findings for downstream consumers.
package authorization

import "github.com/aastar-community/relay-gateway/internal/validation"

// CheckName identifies one of the eight checks in the authorization chain.
type CheckName string

const (
	CheckWhitelist  CheckName = "sender_whitelist"
	CheckBlacklist  CheckName = "sender_blacklist"
	CheckRateLimit  CheckName = "rate_limit"
	CheckPaymaster  CheckName = "paymaster_verification"
	CheckBalance    CheckName = "balance_adequacy"
	CheckNonce      CheckName = "nonce_plausibility"
	CheckFeeCap     CheckName = "fee_cap"
	CheckReputation CheckName = "reputation"
)

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name     CheckName
	Passed   bool
	Severity validation.Severity
	Message  string
}

// Decision is the aggregate outcome of running the authorization chain
// against one UserOperation.
type Decision struct {
	Authorized bool
	Score      int
	Checks     []CheckResult
	Blocking   []CheckResult
	Warnings   []CheckResult
	Metadata   map[string]string
}

// fold applies the Critical/Error-blocks, Warning-allows-but-records rule
// from §4.C across the accumulated checks.
func fold(checks []CheckResult) Decision {
	d := Decision{Authorized: true, Score: 100, Checks: checks, Metadata: map[string]string{}}
	for _, c := range checks {
		if c.Passed {
			continue
		}
		switch c.Severity {
		case validation.SeverityCritical, validation.SeverityError:
			d.Authorized = false
			d.Blocking = append(d.Blocking, c)
		case validation.SeverityWarning:
			d.Warnings = append(d.Warnings, c)
		}
		switch c.Severity {
		case validation.SeverityCritical:
			d.Score -= 20
		case validation.SeverityError:
			d.Score -= 10
		case validation.SeverityWarning:
			d.Score -= 5
		}
	}
	if d.Score < 0 {
		d.Score = 0
	}
	return d
}
