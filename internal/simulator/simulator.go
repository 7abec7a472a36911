// Package simulator defines the gas-estimation collaborator boundary:
// given a UserOperation, return the gas triple eth_estimateUserOperationGas
// needs. The simulation internals (a real EVM trace against pending state)
// are out of scope for this repository; this package owns only the
// interface and an in-memory stand-in for tests and dev-mode.
package simulator

import (
	"context"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

// GasEstimate is the gas triple returned to eth_estimateUserOperationGas
// callers.
type GasEstimate struct {
	CallGasLimit         uint64
	VerificationGasLimit uint64
	PreVerificationGas   uint64
}

// Simulator is the capability interface the gateway depends on.
type Simulator interface {
	EstimateGas(ctx context.Context, op useroperation.UserOperation) (GasEstimate, error)
}

// FixedSimulator returns a constant gas estimate regardless of input,
// useful for tests and as a dev-mode stand-in before a real EVM-backed
// simulator is wired in.
type FixedSimulator struct {
	Estimate GasEstimate
}

func NewFixedSimulator() *FixedSimulator {
	return &FixedSimulator{Estimate: GasEstimate{
		CallGasLimit:         100000,
		VerificationGasLimit: 150000,
		PreVerificationGas:   50000,
	}}
}

func (s *FixedSimulator) EstimateGas(_ context.Context, _ useroperation.UserOperation) (GasEstimate, error) {
	return s.Estimate, nil
}
