package validation

import "math/big"

// Limits bundles the configured ceilings the field-level checks are
// measured against. Zero values disable the corresponding check.
type Limits struct {
	MinGasLimit      *big.Int
	MaxGasLimit      *big.Int
	MaxVerificationGasLimit *big.Int
	MaxCallDataSize  int
	MaxInitCodeSize  int
	StrictSignature  bool
}

// DefaultLimits mirrors typical bundler defaults; callers should override
// from configuration rather than depend on these for production use.
func DefaultLimits() Limits {
	return Limits{
		MinGasLimit:      big.NewInt(21000),
		MaxGasLimit:      big.NewInt(30_000_000),
		MaxVerificationGasLimit: big.NewInt(10_000_000),
		MaxCallDataSize:  128 * 1024,
		MaxInitCodeSize:  64 * 1024,
		StrictSignature:  true,
	}
}

func validateGasRange(field string, v, min, max *big.Int) FieldResult {
	if v == nil {
		return FieldResult{Field: field, Valid: false, Severity: SeverityCritical, Message: field + " is required"}
	}
	if min != nil && v.Cmp(min) < 0 {
		return FieldResult{Field: field, Valid: false, Severity: SeverityError, Message: field + " below configured minimum"}
	}
	if max != nil && v.Cmp(max) > 0 {
		return FieldResult{Field: field, Valid: false, Severity: SeverityError, Message: field + " exceeds configured maximum"}
	}
	return FieldResult{Field: field, Valid: true, Severity: SeverityInfo}
}

func validateFeeNonZero(field string, v *big.Int) FieldResult {
	if v == nil || v.Sign() <= 0 {
		return FieldResult{Field: field, Valid: false, Severity: SeverityError, Message: field + " must be non-zero"}
	}
	return FieldResult{Field: field, Valid: true, Severity: SeverityInfo}
}

func validateSize(field string, size, max int) FieldResult {
	if max <= 0 {
		return FieldResult{Field: field, Valid: true, Severity: SeverityInfo}
	}
	if size > max {
		return FieldResult{Field: field, Valid: false, Severity: SeverityCritical, Message: field + " exceeds configured size limit"}
	}
	return FieldResult{Field: field, Valid: true, Severity: SeverityInfo}
}

func validateCallDataNonEmpty(callData []byte) FieldResult {
	if len(callData) == 0 {
		return FieldResult{Field: "call_data", Valid: false, Severity: SeverityError, Message: "call_data must not be empty"}
	}
	return FieldResult{Field: "call_data", Valid: true, Severity: SeverityInfo}
}

func validatePriorityFeeCrossField(maxPriorityFee, maxFee *big.Int) FieldResult {
	if maxPriorityFee != nil && maxFee != nil && maxPriorityFee.Cmp(maxFee) > 0 {
		return FieldResult{
			Field: "max_priority_fee_per_gas", Valid: false, Severity: SeverityCritical,
			Message: "max_priority_fee_per_gas exceeds max_fee_per_gas",
		}
	}
	return FieldResult{Field: "max_priority_fee_per_gas", Valid: true, Severity: SeverityInfo}
}

func validateFactoryDataCoPresence(hasFactory bool, data []byte) FieldResult {
	if hasFactory && len(data) == 0 {
		return FieldResult{Field: "factory_data", Valid: false, Severity: SeverityCritical, Message: "factory present without factory_data"}
	}
	return FieldResult{Field: "factory_data", Valid: true, Severity: SeverityInfo}
}
