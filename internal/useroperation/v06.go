package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V06Op is the legacy ERC-4337 UserOperation layout: init_code and
// paymaster_and_data are opaque variable-length blobs rather than split
// fields.
type V06Op struct {
	sender               common.Address
	nonce                *big.Int
	initCode             []byte
	callData             []byte
	callGasLimit         *big.Int
	verificationGasLimit *big.Int
	preVerificationGas   *big.Int
	maxFeePerGas         *big.Int
	maxPriorityFeePerGas *big.Int
	paymasterAndData     []byte
	signature            []byte

	// aggregator is only set by TransformForAggregator; v0.6 carries no
	// native aggregator field.
	aggregator   common.Address
	hasAggregator bool
}

var _ UserOperation = (*V06Op)(nil)

// NewV06Op constructs a v0.6 UserOperation from its wire fields.
func NewV06Op(sender common.Address, nonce *big.Int, initCode, callData []byte, callGasLimit, verificationGasLimit, preVerificationGas, maxFeePerGas, maxPriorityFeePerGas *big.Int, paymasterAndData, signature []byte) *V06Op {
	return &V06Op{
		sender:               sender,
		nonce:                nonce,
		initCode:             initCode,
		callData:             callData,
		callGasLimit:         callGasLimit,
		verificationGasLimit: verificationGasLimit,
		preVerificationGas:   preVerificationGas,
		maxFeePerGas:         maxFeePerGas,
		maxPriorityFeePerGas: maxPriorityFeePerGas,
		paymasterAndData:     paymasterAndData,
		signature:            signature,
	}
}

func (op *V06Op) Version() Version                { return V06 }
func (op *V06Op) Sender() common.Address           { return op.sender }
func (op *V06Op) Nonce() *big.Int                  { return op.nonce }
func (op *V06Op) CallData() []byte                 { return op.callData }
func (op *V06Op) CallGasLimit() *big.Int           { return op.callGasLimit }
func (op *V06Op) VerificationGasLimit() *big.Int   { return op.verificationGasLimit }
func (op *V06Op) PreVerificationGas() *big.Int     { return op.preVerificationGas }
func (op *V06Op) MaxFeePerGas() *big.Int           { return op.maxFeePerGas }
func (op *V06Op) MaxPriorityFeePerGas() *big.Int   { return op.maxPriorityFeePerGas }
func (op *V06Op) Signature() []byte                { return op.signature }

// Factory splits the leading 20 bytes of init_code into a factory address,
// treating the rest as factory_data. An empty init_code means no factory.
func (op *V06Op) Factory() (addr common.Address, data []byte, ok bool) {
	if len(op.initCode) < 20 {
		return common.Address{}, nil, false
	}
	return common.BytesToAddress(op.initCode[:20]), op.initCode[20:], true
}

// Paymaster splits the leading 20 bytes of paymaster_and_data into a
// paymaster address, treating the rest as its verification data.
func (op *V06Op) Paymaster() (addr common.Address, data []byte, ok bool) {
	if len(op.paymasterAndData) < 20 {
		return common.Address{}, nil, false
	}
	return common.BytesToAddress(op.paymasterAndData[:20]), op.paymasterAndData[20:], true
}

func (op *V06Op) Aggregator() (common.Address, bool) { return op.aggregator, op.hasAggregator }

func (op *V06Op) Authorization() (Authorization, bool) { return Authorization{}, false }

func (op *V06Op) CalldataGasCost() uint64 {
	return calldataGasCost(op.callData) + calldataGasCost(op.initCode) + calldataGasCost(op.paymasterAndData) + calldataGasCost(op.signature)
}

func (op *V06Op) CalldataFloorGasLimit() uint64 {
	return calldataFloorGasLimit(len(op.callData) + len(op.initCode) + len(op.paymasterAndData) + len(op.signature))
}

func (op *V06Op) Hash(entryPoint common.Address, chainID *big.Int) common.Hash {
	return finalizeHash(hashV06Fields(op), entryPoint, chainID)
}

func (op *V06Op) clone() UserOperation {
	cp := *op
	cp.initCode = append([]byte(nil), op.initCode...)
	cp.callData = append([]byte(nil), op.callData...)
	cp.paymasterAndData = append([]byte(nil), op.paymasterAndData...)
	cp.signature = append([]byte(nil), op.signature...)
	return &cp
}
