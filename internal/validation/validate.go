package validation

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

// Validate runs every field and cross-field check from §4.B against op and
// folds the findings into an aggregate Result. entryPoint is accepted for
// parity with the checker's documented signature (§4.B validates "one
// UserOperation and the entry-point address"); the only check applied to
// it is that it is not the zero address. Entry-point resolution per
// version lives in the version selector.
func Validate(op useroperation.UserOperation, entryPoint common.Address, limits Limits) Result {
	var fields []FieldResult

	sigResult, _ := ValidateSignatureShape(op.Signature(), limits.StrictSignature)
	fields = append(fields, sigResult)

	fields = append(fields, validateGasRange("call_gas_limit", op.CallGasLimit(), limits.MinGasLimit, limits.MaxGasLimit))
	fields = append(fields, validateGasRange("verification_gas_limit", op.VerificationGasLimit(), limits.MinGasLimit, limits.MaxVerificationGasLimit))
	fields = append(fields, validateGasRange("pre_verification_gas", op.PreVerificationGas(), nil, limits.MaxGasLimit))

	fields = append(fields, validateFeeNonZero("max_fee_per_gas", op.MaxFeePerGas()))
	fields = append(fields, validateFeeNonZero("max_priority_fee_per_gas", op.MaxPriorityFeePerGas()))
	fields = append(fields, validatePriorityFeeCrossField(op.MaxPriorityFeePerGas(), op.MaxFeePerGas()))

	fields = append(fields, validateCallDataNonEmpty(op.CallData()))
	fields = append(fields, validateSize("call_data", len(op.CallData()), limits.MaxCallDataSize))

	_, factoryData, hasFactory := op.Factory()
	fields = append(fields, validateFactoryDataCoPresence(hasFactory, factoryData))
	if hasFactory {
		fields = append(fields, validateSize("factory_data", len(factoryData), limits.MaxInitCodeSize))
	}

	fields = append(fields, validateAddressNonZero("entry_point", entryPoint))
	fields = append(fields, validateAddressNonZero("sender", op.Sender()))

	return newResult(fields)
}

func validateAddressNonZero(field string, addr common.Address) FieldResult {
	if addr == (common.Address{}) {
		return FieldResult{Field: field, Valid: false, Severity: SeverityError, Message: field + " must not be the zero address"}
	}
	return FieldResult{Field: field, Valid: true, Severity: SeverityInfo}
}
