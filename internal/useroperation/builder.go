package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BuilderV06 accumulates fields for a v0.6 UserOperation. Zero-value
// numeric fields are left nil until Build, where they're defaulted to
// big.NewInt(0). The builder does no max or random filling; for
// worst-case size estimation, FillGasFields fills the nil fields of a
// GasFields value instead.
type BuilderV06 struct {
	op V06Op
}

func NewBuilderV06(sender common.Address, nonce *big.Int) *BuilderV06 {
	return &BuilderV06{op: V06Op{sender: sender, nonce: nonce}}
}

func (b *BuilderV06) InitCode(v []byte) *BuilderV06         { b.op.initCode = v; return b }
func (b *BuilderV06) CallData(v []byte) *BuilderV06          { b.op.callData = v; return b }
func (b *BuilderV06) CallGasLimit(v *big.Int) *BuilderV06    { b.op.callGasLimit = v; return b }
func (b *BuilderV06) VerificationGasLimit(v *big.Int) *BuilderV06 {
	b.op.verificationGasLimit = v
	return b
}
func (b *BuilderV06) PreVerificationGas(v *big.Int) *BuilderV06 { b.op.preVerificationGas = v; return b }
func (b *BuilderV06) MaxFeePerGas(v *big.Int) *BuilderV06       { b.op.maxFeePerGas = v; return b }
func (b *BuilderV06) MaxPriorityFeePerGas(v *big.Int) *BuilderV06 {
	b.op.maxPriorityFeePerGas = v
	return b
}
func (b *BuilderV06) PaymasterAndData(v []byte) *BuilderV06 { b.op.paymasterAndData = v; return b }
func (b *BuilderV06) Signature(v []byte) *BuilderV06        { b.op.signature = v; return b }
func (b *BuilderV06) Aggregator(addr common.Address) *BuilderV06 {
	b.op.aggregator = addr
	b.op.hasAggregator = true
	return b
}

func (b *BuilderV06) Build() *V06Op {
	fillZero := func(n *big.Int) *big.Int {
		if n == nil {
			return big.NewInt(0)
		}
		return n
	}
	b.op.callGasLimit = fillZero(b.op.callGasLimit)
	b.op.verificationGasLimit = fillZero(b.op.verificationGasLimit)
	b.op.preVerificationGas = fillZero(b.op.preVerificationGas)
	b.op.maxFeePerGas = fillZero(b.op.maxFeePerGas)
	b.op.maxPriorityFeePerGas = fillZero(b.op.maxPriorityFeePerGas)
	out := b.op
	return &out
}

// BuilderV07 accumulates fields for a v0.7/v0.8 packed UserOperation.
type BuilderV07 struct {
	sender                         common.Address
	nonce                          *big.Int
	factory                        common.Address
	factoryData                    []byte
	hasFactory                     bool
	callData                       []byte
	verificationGasLimit           *big.Int
	callGasLimit                   *big.Int
	preVerificationGas             *big.Int
	maxPriorityFeePerGas           *big.Int
	maxFeePerGas                   *big.Int
	paymaster                      common.Address
	paymasterVerificationGasLimit *big.Int
	paymasterPostOpGasLimit       *big.Int
	paymasterData                 []byte
	hasPaymaster                   bool
	signature                      []byte
	aggregator                     common.Address
	hasAggregator                  bool
	authorization                  Authorization
	hasAuthorization                bool
}

func NewBuilderV07(sender common.Address, nonce *big.Int) *BuilderV07 {
	return &BuilderV07{sender: sender, nonce: nonce}
}

func (b *BuilderV07) Factory(addr common.Address, data []byte) *BuilderV07 {
	b.factory, b.factoryData, b.hasFactory = addr, data, true
	return b
}
func (b *BuilderV07) CallData(v []byte) *BuilderV07 { b.callData = v; return b }
func (b *BuilderV07) VerificationGasLimit(v *big.Int) *BuilderV07 {
	b.verificationGasLimit = v
	return b
}
func (b *BuilderV07) CallGasLimit(v *big.Int) *BuilderV07       { b.callGasLimit = v; return b }
func (b *BuilderV07) PreVerificationGas(v *big.Int) *BuilderV07 { b.preVerificationGas = v; return b }
func (b *BuilderV07) MaxPriorityFeePerGas(v *big.Int) *BuilderV07 {
	b.maxPriorityFeePerGas = v
	return b
}
func (b *BuilderV07) MaxFeePerGas(v *big.Int) *BuilderV07 { b.maxFeePerGas = v; return b }
func (b *BuilderV07) Paymaster(addr common.Address, verificationGasLimit, postOpGasLimit *big.Int, data []byte) *BuilderV07 {
	b.paymaster = addr
	b.paymasterVerificationGasLimit = verificationGasLimit
	b.paymasterPostOpGasLimit = postOpGasLimit
	b.paymasterData = data
	b.hasPaymaster = true
	return b
}
func (b *BuilderV07) Signature(v []byte) *BuilderV07 { b.signature = v; return b }
func (b *BuilderV07) Aggregator(addr common.Address) *BuilderV07 {
	b.aggregator, b.hasAggregator = addr, true
	return b
}
func (b *BuilderV07) Authorization(auth Authorization) *BuilderV07 {
	b.authorization, b.hasAuthorization = auth, true
	return b
}

func zeroIfNil(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return n
}

func (b *BuilderV07) Build() *V07Op {
	op := NewV07Op(
		b.sender, b.nonce,
		b.factory, b.factoryData, b.hasFactory,
		b.callData,
		zeroIfNil(b.verificationGasLimit), zeroIfNil(b.callGasLimit), zeroIfNil(b.preVerificationGas),
		zeroIfNil(b.maxPriorityFeePerGas), zeroIfNil(b.maxFeePerGas),
		b.paymaster, zeroIfNil(b.paymasterVerificationGasLimit), zeroIfNil(b.paymasterPostOpGasLimit), b.paymasterData, b.hasPaymaster,
		b.signature,
	)
	op.aggregator, op.hasAggregator = b.aggregator, b.hasAggregator
	return op
}

// BuildV08 produces a v0.8 op, attaching the accumulated authorization
// tuple (if any) to the v0.7-shaped base.
func (b *BuilderV07) BuildV08() *V08Op {
	return NewV08Op(b.Build(), b.authorization, b.hasAuthorization)
}
