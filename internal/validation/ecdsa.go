package validation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// secp256k1N is the single source of truth for the curve order used by
// every signature check in this package. Earlier iterations of this
// validation logic duplicated the constant by hand in several places; it
// is sourced once here from go-ethereum's curve parameters.
var secp256k1N = crypto.S256().Params().N

var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

// ParsedSignature is an ECDSA signature split into its components, valid
// only if Shape().Valid is true.
type ParsedSignature struct {
	R, S *big.Int
	V    uint8
	// HasV is false for 64-byte compact signatures that omit the recovery
	// id; HasV is always true for 65-byte signatures.
	HasV bool
}

// ValidateSignatureShape applies the length, r/s-range, low-s, and v-range
// rules from the data-integrity checker to raw signature bytes. strict
// controls whether a high-s (malleable) signature is Critical or Warning.
func ValidateSignatureShape(sig []byte, strict bool) (FieldResult, *ParsedSignature) {
	switch len(sig) {
	case 64:
		parsed := &ParsedSignature{
			R: new(big.Int).SetBytes(sig[:32]),
			S: new(big.Int).SetBytes(sig[32:64]),
		}
		if res := validateRS(parsed.R, parsed.S); !res.Valid {
			return res, nil
		}
		highS, res := validateLowS(parsed.S, strict)
		if !res.Valid {
			return res, nil
		}
		_ = highS
		return FieldResult{
			Field: "signature", Valid: true, Severity: SeverityWarning,
			Message: "64-byte compact signature has no recovery id (v); downstream recovery must try both parities",
		}, parsed
	case 65:
		parsed := &ParsedSignature{
			R:    new(big.Int).SetBytes(sig[:32]),
			S:    new(big.Int).SetBytes(sig[32:64]),
			V:    sig[64],
			HasV: true,
		}
		if res := validateRS(parsed.R, parsed.S); !res.Valid {
			return res, nil
		}
		if res := validateV(parsed.V); !res.Valid {
			return res, nil
		}
		if _, res := validateLowS(parsed.S, strict); !res.Valid {
			return res, nil
		}
		return FieldResult{Field: "signature", Valid: true, Severity: SeverityInfo, Message: "standard signature"}, parsed
	default:
		return FieldResult{
			Field: "signature", Valid: false, Severity: SeverityCritical,
			Message: "signature must be 64 (compact) or 65 (standard r|s|v) bytes",
		}, nil
	}
}

func validateRS(r, s *big.Int) FieldResult {
	one := big.NewInt(1)
	if r.Cmp(one) < 0 || r.Cmp(secp256k1N) >= 0 {
		return FieldResult{Field: "signature.r", Valid: false, Severity: SeverityCritical, Message: "r must lie in [1, n)"}
	}
	if s.Cmp(one) < 0 || s.Cmp(secp256k1N) >= 0 {
		return FieldResult{Field: "signature.s", Valid: false, Severity: SeverityCritical, Message: "s must lie in [1, n)"}
	}
	return FieldResult{Field: "signature.r_s", Valid: true, Severity: SeverityInfo}
}

// validateLowS reports whether s is "high" (s > n/2) and whether that's
// acceptable given strict mode.
func validateLowS(s *big.Int, strict bool) (highS bool, result FieldResult) {
	if s.Cmp(secp256k1HalfN) <= 0 {
		return false, FieldResult{Field: "signature.s", Valid: true, Severity: SeverityInfo, Message: "low-s"}
	}
	if strict {
		return true, FieldResult{
			Field: "signature.s", Valid: false, Severity: SeverityCritical,
			Message: "malleable signature: s is high (s > n/2) in strict mode",
		}
	}
	return true, FieldResult{
		Field: "signature.s", Valid: true, Severity: SeverityWarning,
		Message: "malleable signature: s is high (s > n/2)",
	}
}

func validateV(v uint8) FieldResult {
	switch v {
	case 0, 1, 27, 28:
		return FieldResult{Field: "signature.v", Valid: true, Severity: SeverityInfo}
	}
	if v >= 37 {
		parity := (uint16(v) - 35) % 2
		if parity == 0 || parity == 1 {
			return FieldResult{Field: "signature.v", Valid: true, Severity: SeverityInfo, Message: "EIP-155 v"}
		}
	}
	return FieldResult{Field: "signature.v", Valid: false, Severity: SeverityCritical, Message: "v must be in {0,1,27,28} or a valid EIP-155 value"}
}

// Normalize converts a high-s signature to its low-s equivalent by
// replacing s with n-s and flipping the recovery parity, per the standard
// secp256k1 malleability-removal rule. Normalization is idempotent:
// normalizing an already-low-s signature is a no-op.
func Normalize(sig *ParsedSignature) *ParsedSignature {
	out := &ParsedSignature{R: sig.R, V: sig.V, HasV: sig.HasV}
	if sig.S.Cmp(secp256k1HalfN) <= 0 {
		out.S = sig.S
		return out
	}
	out.S = new(big.Int).Sub(secp256k1N, sig.S)
	if sig.HasV {
		out.V = flipParity(sig.V)
	}
	return out
}

func flipParity(v uint8) uint8 {
	switch v {
	case 0:
		return 1
	case 1:
		return 0
	case 27:
		return 28
	case 28:
		return 27
	default:
		// EIP-155: flip the low bit of (v-35).
		return v ^ 1
	}
}
