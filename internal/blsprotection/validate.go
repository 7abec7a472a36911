package blsprotection

import "github.com/ethereum/go-ethereum/common"

// ValidateSignatureShape checks a single BLS signature's shape: length in
// [48, 96] and not all-zero.
func ValidateSignatureShape(sig []byte) error {
	if len(sig) < blsSignatureMinLen || len(sig) > blsSignatureMaxLen {
		return ErrInvalidSignatureShape
	}
	if isAllZero(sig) {
		return ErrInvalidSignatureShape
	}
	return nil
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// AggregationRequest is one aggregator submission to validate.
type AggregationRequest struct {
	Aggregator  common.Address
	MessageHash common.Hash
	Signatures  [][]byte
}

// ValidateAggregationRequest applies the per-request rules from §4.E:
// reject if the signature count exceeds maxSignatures, reject duplicate
// signatures, shape-check every signature, and require a non-zero message
// hash. It returns both an error (for the caller's ordinary rejection
// path) and the set of security flags raised, since a request can be
// rejected for more than one structural reason at once and the caller
// needs all of them to drive the auto-blacklist rule.
func ValidateAggregationRequest(req AggregationRequest, maxSignatures int) (error, []SecurityFlag) {
	var flags []SecurityFlag

	if req.MessageHash == (common.Hash{}) {
		return ErrZeroMessageHash, flags
	}

	if maxSignatures > 0 && len(req.Signatures) > maxSignatures {
		flags = append(flags, FlagExcessSignatures)
	}

	seen := make(map[string]bool, len(req.Signatures))
	for _, sig := range req.Signatures {
		key := string(sig)
		if seen[key] {
			flags = append(flags, FlagDuplicateSignatures)
			break
		}
		seen[key] = true
	}

	for _, sig := range req.Signatures {
		if err := ValidateSignatureShape(sig); err != nil {
			return err, flags
		}
	}

	if len(flags) > 0 {
		if containsFlag(flags, FlagExcessSignatures) {
			return ErrTooManySignatures, flags
		}
		return ErrDuplicateSignatures, flags
	}

	return nil, nil
}

func containsFlag(flags []SecurityFlag, target SecurityFlag) bool {
	for _, f := range flags {
		if f == target {
			return true
		}
	}
	return false
}
