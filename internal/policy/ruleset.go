// Package policy implements the Policy Engine (§4.K): a hot-reloadable
// TOML ruleset evaluated in a fixed order — rate-limit, deny-list,
// allow-list, per-address override, global gas caps, default action.
package policy

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Action is the terminal decision a rule (or the default) produces.
type Action string

const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// AddressOverride is a per-sender rule with its own gas-limit ceiling.
type AddressOverride struct {
	Address      string `toml:"address"`
	Action       Action `toml:"action"`
	MaxGasLimit  uint64 `toml:"max_gas_limit"`
}

// ContractOverride restricts specific function selectors on a contract.
type ContractOverride struct {
	Address           string   `toml:"address"`
	AllowedSelectors  []string `toml:"allowed_selectors"`
	DeniedSelectors   []string `toml:"denied_selectors"`
}

// GlobalCaps bounds every op regardless of sender.
type GlobalCaps struct {
	MaxGasLimit           uint64 `toml:"max_gas_limit"`
	MaxVerificationGasLimit uint64 `toml:"max_verification_gas_limit"`
	MaxCallGasLimit       uint64 `toml:"max_call_gas_limit"`
	MaxOpsPerMinute       int    `toml:"max_ops_per_minute"`
}

// Ruleset is the parsed, immutable policy document. Once constructed it is
// never mutated in place; a reload produces a brand-new Ruleset that
// replaces the old one via an atomic pointer swap.
type Ruleset struct {
	DefaultAction Action              `toml:"default_action"`
	Global        GlobalCaps          `toml:"global"`
	AllowSenders  []string            `toml:"allow_senders"`
	DenySenders   []string            `toml:"deny_senders"`
	Addresses     []AddressOverride   `toml:"addresses"`
	Contracts     []ContractOverride  `toml:"contracts"`

	allowSet     map[string]bool
	denySet      map[string]bool
	addressIndex map[string]AddressOverride
	contractIndex map[string]ContractOverride
}

// index builds the lookup maps used by Evaluate. Called once right after
// parsing, never again — the Ruleset is immutable from then on.
func (r *Ruleset) index() {
	r.allowSet = toSet(r.AllowSenders)
	r.denySet = toSet(r.DenySenders)
	r.addressIndex = map[string]AddressOverride{}
	for _, a := range r.Addresses {
		r.addressIndex[normalize(a.Address)] = a
	}
	r.contractIndex = map[string]ContractOverride{}
	for _, c := range r.Contracts {
		r.contractIndex[normalize(c.Address)] = c
	}
}

func toSet(addrs []string) map[string]bool {
	out := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		out[normalize(a)] = true
	}
	return out
}

func normalize(addr string) string {
	if addr == "" {
		return ""
	}
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

// DefaultRuleset returns a permissive empty ruleset: default-allow, no
// caps, no lists — used when no policy file has been loaded yet.
func DefaultRuleset() *Ruleset {
	r := &Ruleset{DefaultAction: ActionAllow}
	r.index()
	return r
}
