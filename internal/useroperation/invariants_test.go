package useroperation

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestValidateInvariantsRejectsExcessivePriorityFee(t *testing.T) {
	op := NewBuilderV06(common.Address{}, big.NewInt(0)).
		MaxFeePerGas(big.NewInt(10)).
		MaxPriorityFeePerGas(big.NewInt(20)).
		Build()

	if err := ValidateInvariants(op); !errors.Is(err, ErrPriorityFeeExceedsMax) {
		t.Fatalf("expected ErrPriorityFeeExceedsMax, got %v", err)
	}
}

func TestValidateInvariantsRejectsFactoryWithoutData(t *testing.T) {
	op := NewBuilderV07(common.Address{}, big.NewInt(0)).
		Factory(common.HexToAddress("0x0000000000000000000000000000000000aaaa"), nil).
		Build()

	if err := ValidateInvariants(op); !errors.Is(err, ErrFactoryDataMissing) {
		t.Fatalf("expected ErrFactoryDataMissing, got %v", err)
	}
}

func TestValidateInvariantsAcceptsWellFormedOp(t *testing.T) {
	op := NewBuilderV06(common.Address{}, big.NewInt(0)).
		MaxFeePerGas(big.NewInt(20)).
		MaxPriorityFeePerGas(big.NewInt(10)).
		Build()

	if err := ValidateInvariants(op); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
