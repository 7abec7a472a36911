package useroperation

import "github.com/ethereum/go-ethereum/common"

// AggregatedOp wraps a UserOperation whose signature has been replaced by
// an aggregator-produced signature, per §4.A's transform_for_aggregator.
// It remembers the original signature and its calldata-derived costs so
// WithOriginalSignature can reverse the transform exactly.
type AggregatedOp struct {
	UserOperation

	aggregator   common.Address
	signature    []byte
	origSignature []byte
	origGasCost  uint64
	origFloorGas uint64
}

var _ UserOperation = (*AggregatedOp)(nil)

// TransformForAggregator replaces op's signature with newSignature,
// recomputes cached calldata costs, and records the original signature and
// costs for later reversal. Failure mode: none; purely arithmetic.
func TransformForAggregator(op UserOperation, aggregator common.Address, newSignature []byte) *AggregatedOp {
	return &AggregatedOp{
		UserOperation: op.clone(),
		aggregator:    aggregator,
		signature:     newSignature,
		origSignature: append([]byte(nil), op.Signature()...),
		origGasCost:   op.CalldataGasCost(),
		origFloorGas:  op.CalldataFloorGasLimit(),
	}
}

func (a *AggregatedOp) Signature() []byte { return a.signature }

func (a *AggregatedOp) Aggregator() (common.Address, bool) { return a.aggregator, true }

func (a *AggregatedOp) CalldataGasCost() uint64 {
	return a.UserOperation.CalldataGasCost() - calldataGasCost(a.origSignature) + calldataGasCost(a.signature)
}

func (a *AggregatedOp) CalldataFloorGasLimit() uint64 {
	delta := len(a.signature) - len(a.origSignature)
	base := int(a.UserOperation.CalldataFloorGasLimit())
	adjusted := base + delta*4*10
	if adjusted < 0 {
		adjusted = 0
	}
	return uint64(adjusted)
}

func (a *AggregatedOp) clone() UserOperation {
	cp := *a
	cp.UserOperation = a.UserOperation.clone()
	cp.signature = append([]byte(nil), a.signature...)
	cp.origSignature = append([]byte(nil), a.origSignature...)
	return &cp
}

// WithOriginalSignature reverses TransformForAggregator: it restores the
// pre-aggregation signature and the calldata costs that were cached before
// the transform, returning the plain (non-aggregated) underlying op.
func (a *AggregatedOp) WithOriginalSignature() UserOperation {
	restored := a.UserOperation.clone()
	switch op := restored.(type) {
	case *V06Op:
		op.signature = append([]byte(nil), a.origSignature...)
	case *V07Op:
		op.signature = append([]byte(nil), a.origSignature...)
	case *V08Op:
		op.signature = append([]byte(nil), a.origSignature...)
	}
	return restored
}

// OriginalCosts returns the calldata gas cost and floor gas limit the
// wrapped op had before TransformForAggregator ran.
func (a *AggregatedOp) OriginalCosts() (gasCost, floorGasLimit uint64) {
	return a.origGasCost, a.origFloorGas
}
