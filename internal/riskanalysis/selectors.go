package riskanalysis

import (
	"encoding/hex"
	"strings"
)

// dangerousSelectors maps a 4-byte function selector (hex, no 0x prefix)
// to a severity, per §4.D's "table of dangerous selectors". Selectors here
// are the well-known 4-byte hashes of the named functions; a real
// deployment would extend this from a config file rather than a literal
// table, but the table itself is the mechanism under test.
var dangerousSelectors = map[string]Severity{
	"41c0e1b5": SeverityCritical, // selfdestruct()
	"095ea7b3": SeverityModerate, // approve(address,uint256)
	"a9059cbb": SeverityModerate, // transfer(address,uint256)
	"23b872dd": SeverityHigh,     // transferFrom(address,address,uint256)
	"42842e0e": SeverityModerate, // safeTransferFrom(address,address,uint256)
	"f2fde38b": SeverityHigh,     // transferOwnership(address)
}

// maliciousPatterns is the library of hex-encoded calldata substrings
// that, if found anywhere in the encoded call_data, contribute risk. It is
// a fixed, unexported package-level slice; the package exposes no way to
// add or remove patterns at runtime.
var maliciousPatterns = []string{
	"deadbeef",
	"feedface",
	"baadf00d",
}

const (
	oversizeThresholdBytes = 4 * 1024
	paddingAttackRatio     = 0.80
)

func selectorOf(callData []byte) (string, bool) {
	if len(callData) < 4 {
		return "", false
	}
	return hex.EncodeToString(callData[:4]), true
}

// inspectSelector checks call_data's 4-byte selector against the
// dangerous-selector table.
func inspectSelector(callData []byte) *Finding {
	sel, ok := selectorOf(callData)
	if !ok {
		return nil
	}
	sev, known := dangerousSelectors[sel]
	if !known {
		return nil
	}
	return &Finding{Kind: "dangerous_selector", Severity: sev, Detail: "selector 0x" + sel + " matches a dangerous-function table entry"}
}

// inspectOversize flags call_data larger than the configured threshold.
func inspectOversize(callData []byte) *Finding {
	if len(callData) > oversizeThresholdBytes {
		return &Finding{Kind: "oversize_calldata", Severity: SeverityModerate, Detail: "call_data exceeds 4 KiB"}
	}
	return nil
}

// inspectPaddingAttack flags call_data where one byte value occupies more
// than 80% of all bytes — a shape characteristic of padding/selector-
// collision attacks.
func inspectPaddingAttack(callData []byte) *Finding {
	if len(callData) == 0 {
		return nil
	}
	var counts [256]int
	for _, b := range callData {
		counts[b]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if float64(max)/float64(len(callData)) > paddingAttackRatio {
		return &Finding{Kind: "padding_attack_shape", Severity: SeverityHigh, Detail: "one byte value occupies over 80% of call_data"}
	}
	return nil
}

// scanMaliciousPatterns reports a finding per pattern match found anywhere
// in the hex encoding of call_data.
func scanMaliciousPatterns(callData []byte) []Finding {
	encoded := hex.EncodeToString(callData)
	var findings []Finding
	for _, pattern := range maliciousPatterns {
		if strings.Contains(encoded, pattern) {
			findings = append(findings, Finding{Kind: "malicious_pattern", Severity: SeverityHigh, Detail: "calldata matches pattern " + pattern})
		}
	}
	return findings
}
