package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V07Op is the packed ERC-4337 UserOperation layout: verification/call gas
// limits and the two fee fields are each packed into a single bytes32 word,
// and factory/paymaster are explicit fields rather than blob prefixes.
type V07Op struct {
	sender             common.Address
	nonce              *big.Int
	factory            common.Address
	factoryData        []byte
	hasFactory         bool
	callData           []byte
	accountGasLimits   [32]byte
	preVerificationGas *big.Int
	gasFees            [32]byte

	paymaster                     common.Address
	paymasterVerificationGasLimit *big.Int
	paymasterPostOpGasLimit       *big.Int
	paymasterData                 []byte
	hasPaymaster                  bool

	signature []byte

	aggregator    common.Address
	hasAggregator bool
}

var _ UserOperation = (*V07Op)(nil)

// NewV07Op constructs a v0.7 UserOperation. Pass hasFactory/hasPaymaster
// false with zero-value fields when the op has none.
func NewV07Op(sender common.Address, nonce *big.Int, factory common.Address, factoryData []byte, hasFactory bool, callData []byte, verificationGasLimit, callGasLimit, preVerificationGas, maxPriorityFeePerGas, maxFeePerGas *big.Int, paymaster common.Address, paymasterVerificationGasLimit, paymasterPostOpGasLimit *big.Int, paymasterData []byte, hasPaymaster bool, signature []byte) *V07Op {
	return &V07Op{
		sender:                         sender,
		nonce:                          nonce,
		factory:                        factory,
		factoryData:                    factoryData,
		hasFactory:                     hasFactory,
		callData:                       callData,
		accountGasLimits:               PackAccountGasLimits(verificationGasLimit, callGasLimit),
		preVerificationGas:             preVerificationGas,
		gasFees:                        PackGasFees(maxPriorityFeePerGas, maxFeePerGas),
		paymaster:                      paymaster,
		paymasterVerificationGasLimit:  paymasterVerificationGasLimit,
		paymasterPostOpGasLimit:        paymasterPostOpGasLimit,
		paymasterData:                  paymasterData,
		hasPaymaster:                   hasPaymaster,
		signature:                      signature,
	}
}

func (op *V07Op) Version() Version      { return V07 }
func (op *V07Op) Sender() common.Address { return op.sender }
func (op *V07Op) Nonce() *big.Int        { return op.nonce }
func (op *V07Op) CallData() []byte       { return op.callData }

func (op *V07Op) CallGasLimit() *big.Int {
	_, cgl := UnpackAccountGasLimits(op.accountGasLimits)
	return cgl
}

func (op *V07Op) VerificationGasLimit() *big.Int {
	vgl, _ := UnpackAccountGasLimits(op.accountGasLimits)
	return vgl
}

func (op *V07Op) PreVerificationGas() *big.Int { return op.preVerificationGas }

func (op *V07Op) MaxFeePerGas() *big.Int {
	_, maxFee := UnpackGasFees(op.gasFees)
	return maxFee
}

func (op *V07Op) MaxPriorityFeePerGas() *big.Int {
	priority, _ := UnpackGasFees(op.gasFees)
	return priority
}

func (op *V07Op) Signature() []byte { return op.signature }

func (op *V07Op) Factory() (common.Address, []byte, bool) {
	if !op.hasFactory {
		return common.Address{}, nil, false
	}
	return op.factory, op.factoryData, true
}

// PaymasterVerificationGasLimit and PaymasterPostOpGasLimit are v0.7/v0.8
// specific and not part of the shared UserOperation interface; callers that
// need them should type-assert to *V07Op/*V08Op.
func (op *V07Op) PaymasterVerificationGasLimit() *big.Int { return op.paymasterVerificationGasLimit }
func (op *V07Op) PaymasterPostOpGasLimit() *big.Int       { return op.paymasterPostOpGasLimit }

func (op *V07Op) Paymaster() (common.Address, []byte, bool) {
	if !op.hasPaymaster {
		return common.Address{}, nil, false
	}
	return op.paymaster, op.paymasterData, true
}

func (op *V07Op) Aggregator() (common.Address, bool) { return op.aggregator, op.hasAggregator }

func (op *V07Op) Authorization() (Authorization, bool) { return Authorization{}, false }

func (op *V07Op) calldataBytesLen() int {
	return len(op.callData) + len(op.factoryData) + len(op.paymasterData) + len(op.signature)
}

func (op *V07Op) CalldataGasCost() uint64 {
	return calldataGasCost(op.callData) + calldataGasCost(op.factoryData) + calldataGasCost(op.paymasterData) + calldataGasCost(op.signature)
}

func (op *V07Op) CalldataFloorGasLimit() uint64 {
	return calldataFloorGasLimit(op.calldataBytesLen())
}

// paymasterAndDataBlob reconstructs the on-chain paymaster_and_data encoding
// used by the canonical hash: paymaster || verificationGasLimit(16) ||
// postOpGasLimit(16) || paymasterData.
func (op *V07Op) paymasterAndDataBlob() []byte {
	if !op.hasPaymaster {
		return nil
	}
	out := make([]byte, 0, 20+16+16+len(op.paymasterData))
	out = append(out, op.paymaster.Bytes()...)
	out = append(out, word32(op.paymasterVerificationGasLimit.Bytes())[16:]...)
	out = append(out, word32(op.paymasterPostOpGasLimit.Bytes())[16:]...)
	out = append(out, op.paymasterData...)
	return out
}

func (op *V07Op) initCodeBlob() []byte {
	if !op.hasFactory {
		return nil
	}
	out := make([]byte, 0, 20+len(op.factoryData))
	out = append(out, op.factory.Bytes()...)
	out = append(out, op.factoryData...)
	return out
}

func (op *V07Op) Hash(entryPoint common.Address, chainID *big.Int) common.Hash {
	inner := hashPackedFields(op.sender, op.nonce, op.initCodeBlob(), op.callData, op.accountGasLimits, op.preVerificationGas, op.gasFees, op.paymasterAndDataBlob())
	return finalizeHash(inner, entryPoint, chainID)
}

func (op *V07Op) clone() UserOperation {
	cp := *op
	cp.factoryData = append([]byte(nil), op.factoryData...)
	cp.callData = append([]byte(nil), op.callData...)
	cp.paymasterData = append([]byte(nil), op.paymasterData...)
	cp.signature = append([]byte(nil), op.signature...)
	return &cp
}
