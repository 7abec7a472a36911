package validation

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

func wellFormedOp() useroperation.UserOperation {
	sig := make([]byte, 65)
	sig[64] = 27
	sig[31] = 1
	sig[63] = 1
	return useroperation.NewBuilderV06(common.HexToAddress("0x0000000000000000000000000000000000c0de"), big.NewInt(1)).
		CallData([]byte{0x01, 0x02, 0x03, 0x04}).
		CallGasLimit(big.NewInt(100000)).
		VerificationGasLimit(big.NewInt(100000)).
		PreVerificationGas(big.NewInt(50000)).
		MaxFeePerGas(big.NewInt(2_000_000_000)).
		MaxPriorityFeePerGas(big.NewInt(1_000_000_000)).
		Signature(sig).
		Build()
}

func TestValidatePassesWellFormedOp(t *testing.T) {
	result := Validate(wellFormedOp(), common.HexToAddress(useroperation.EntryPointV06Address), DefaultLimits())
	if !result.Pass {
		t.Fatalf("expected well-formed op to pass, critical findings: %+v", result.Critical)
	}
}

func TestValidateFlagsOversizeCalldata(t *testing.T) {
	op := useroperation.NewBuilderV06(common.HexToAddress("0x0000000000000000000000000000000000c0de"), big.NewInt(1)).
		CallData(make([]byte, 200)).
		MaxFeePerGas(big.NewInt(1)).
		MaxPriorityFeePerGas(big.NewInt(1)).
		Signature(make([]byte, 65)).
		Build()

	limits := DefaultLimits()
	limits.MaxCallDataSize = 100
	result := Validate(op, common.HexToAddress(useroperation.EntryPointV06Address), limits)
	if result.Pass {
		t.Fatalf("expected oversize calldata to fail")
	}
}

func TestValidateExactCeilingPassesOneOverFails(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxCallDataSize = 16

	exact := useroperation.NewBuilderV06(common.HexToAddress("0x0000000000000000000000000000000000c0de"), big.NewInt(1)).
		CallData(make([]byte, 16)).
		MaxFeePerGas(big.NewInt(1)).
		MaxPriorityFeePerGas(big.NewInt(1)).
		Signature(make([]byte, 65)).
		Build()
	if r := Validate(exact, common.Address{}, limits); len(sizeFindings(r)) != 0 {
		t.Fatalf("exact-ceiling calldata should not trigger a size finding: %+v", sizeFindings(r))
	}

	over := useroperation.NewBuilderV06(common.HexToAddress("0x0000000000000000000000000000000000c0de"), big.NewInt(1)).
		CallData(make([]byte, 17)).
		MaxFeePerGas(big.NewInt(1)).
		MaxPriorityFeePerGas(big.NewInt(1)).
		Signature(make([]byte, 65)).
		Build()
	if r := Validate(over, common.Address{}, limits); len(sizeFindings(r)) == 0 {
		t.Fatalf("one byte over ceiling should trigger a Critical size finding")
	}
}

func sizeFindings(r Result) []FieldResult {
	var out []FieldResult
	for _, f := range r.Critical {
		if f.Field == "call_data" {
			out = append(out, f)
		}
	}
	return out
}
