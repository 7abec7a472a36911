package policy

import (
	"strings"
	"sync"
	"time"
)

// Decision is the terminal output of Evaluate: which rule fired, what
// action it produced, and (for address overrides) a gas-limit override for
// downstream admission.
type Decision struct {
	Action           Action
	MatchedRule      string
	GasLimitOverride uint64
	HasGasOverride   bool
}

// senderWindow is the per-sender fixed-window rate state: the op count and
// the window's start time (the limit is passed to Allow on each call) —
// kept alongside the ruleset rather than inside it, since it's mutable
// request-by-request state, not parsed policy.
type senderWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter tracks one fixed-window counter per sender address.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*senderWindow
	window  time.Duration
}

func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{windows: map[string]*senderWindow{}, window: window}
}

// Allow reports whether sender may proceed under limit ops per window,
// resetting the window if it has elapsed.
func (rl *RateLimiter) Allow(sender string, limit int, now time.Time) bool {
	if limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[sender]
	if !ok || now.Sub(w.windowStart) >= rl.window {
		w = &senderWindow{count: 0, windowStart: now}
		rl.windows[sender] = w
	}
	w.count++
	return w.count <= limit
}

// Evaluate runs the fixed evaluation order against a parsed Ruleset: rate
// limit, global deny-list, global allow-list, per-address override, global
// gas caps, default action. The first rule that produces a decision wins.
func Evaluate(r *Ruleset, rl *RateLimiter, sender string, gasLimit uint64, now time.Time) Decision {
	norm := normalize(sender)

	if rl != nil && r.Global.MaxOpsPerMinute > 0 {
		if !rl.Allow(norm, r.Global.MaxOpsPerMinute, now) {
			return Decision{Action: ActionDeny, MatchedRule: "rate_limit"}
		}
	}

	if r.denySet[norm] {
		return Decision{Action: ActionDeny, MatchedRule: "deny_senders"}
	}

	if len(r.allowSet) > 0 && r.allowSet[norm] {
		return Decision{Action: ActionAllow, MatchedRule: "allow_senders"}
	}

	if override, ok := r.addressIndex[norm]; ok {
		d := Decision{Action: override.Action, MatchedRule: "address_override"}
		if override.MaxGasLimit > 0 {
			d.GasLimitOverride = override.MaxGasLimit
			d.HasGasOverride = true
			if gasLimit > override.MaxGasLimit {
				d.Action = ActionDeny
				d.MatchedRule = "address_override_gas_cap"
			}
		}
		return d
	}

	if r.Global.MaxGasLimit > 0 && gasLimit > r.Global.MaxGasLimit {
		return Decision{Action: ActionDeny, MatchedRule: "global_gas_cap"}
	}

	return Decision{Action: r.DefaultAction, MatchedRule: "default"}
}

// SelectorAllowed reports whether a function selector is permitted for a
// contract under its ContractOverride, if one exists; contracts with no
// override are unrestricted at the selector level.
func SelectorAllowed(r *Ruleset, contract, selector string) bool {
	override, ok := r.contractIndex[normalize(contract)]
	if !ok {
		return true
	}
	selector = strings.ToLower(selector)
	for _, denied := range override.DeniedSelectors {
		if strings.ToLower(denied) == selector {
			return false
		}
	}
	if len(override.AllowedSelectors) == 0 {
		return true
	}
	for _, allowed := range override.AllowedSelectors {
		if strings.ToLower(allowed) == selector {
			return true
		}
	}
	return false
}
