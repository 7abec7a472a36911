package simulator

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

func TestFixedSimulatorReturnsConfiguredEstimate(t *testing.T) {
	sim := NewFixedSimulator()
	op := useroperation.NewBuilderV06(common.Address{}, big.NewInt(1)).Build()

	est, err := sim.EstimateGas(context.Background(), op)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.CallGasLimit == 0 {
		t.Fatalf("expected a nonzero call gas limit")
	}
}
