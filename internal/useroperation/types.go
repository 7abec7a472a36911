// Package useroperation models ERC-4337 UserOperations across the three
// wire formats (v0.6, v0.7, v0.8) behind a single capability interface.
//
// This mirrors the teacher's split between an off-chain UserOperation and a
// packed on-chain PackedUserOperation (see the erc4337 paymaster mechanism
// this package descends from), generalized to a tagged union instead of one
// struct with optional fields, per the "heterogeneous types via runtime
// polymorphism" re-architecture note: each variant gets its own struct and
// its own encoding, sharing only the accessor surface.
package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Version identifies which ERC-4337 UserOperation wire format an op uses.
type Version string

const (
	V06 Version = "0.6"
	V07 Version = "0.7"
	V08 Version = "0.8"
)

// EntryPoint addresses for the canonical deployments (v0.6/v0.7 fixed by
// the ERC; v0.8 is still finding its canonical address and is supplied by
// configuration).
const (
	EntryPointV06Address = "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"
	EntryPointV07Address = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
)

// Authorization is the optional EIP-7702 authorization tuple carried by a
// v0.8 UserOperation, allowing an EOA sender to delegate code.
type Authorization struct {
	ChainID *big.Int
	Address common.Address
	Nonce   uint64
	YParity uint8
	R       *big.Int
	S       *big.Int
}

// UserOperation is the capability surface shared by all three variants.
// Concrete field layout differs per variant; this interface is the only
// thing the rest of the gateway depends on.
type UserOperation interface {
	Version() Version
	Sender() common.Address
	Nonce() *big.Int
	CallData() []byte
	CallGasLimit() *big.Int
	VerificationGasLimit() *big.Int
	PreVerificationGas() *big.Int
	MaxFeePerGas() *big.Int
	MaxPriorityFeePerGas() *big.Int
	Signature() []byte

	// Factory returns the deployment factory address, if any, and whether
	// the op carries one at all (factory + factory_data are co-present).
	Factory() (addr common.Address, data []byte, ok bool)

	// Paymaster returns the paymaster address, if any, and its verification
	// data. For v0.6 this is extracted from the first 20 bytes of
	// PaymasterAndData; for v0.7+ it is an explicit field.
	Paymaster() (addr common.Address, data []byte, ok bool)

	// Aggregator returns the signature aggregator address, if one is
	// attached. The wire formats don't carry an aggregator field; it is set
	// through a builder's Aggregator method, and an op produced by
	// TransformForAggregator reports the aggregator it was given.
	Aggregator() (addr common.Address, ok bool)

	// Authorization returns the EIP-7702 tuple for v0.8 ops.
	Authorization() (auth Authorization, ok bool)

	// CalldataGasCost and CalldataFloorGasLimit are computed from the op's
	// current byte fields on every call rather than cached, so they always
	// reflect the current signature; AggregatedOp adjusts them for its
	// replaced signature (see TransformForAggregator).
	CalldataGasCost() uint64
	CalldataFloorGasLimit() uint64

	// Hash returns the canonical, content-addressed digest of the op for a
	// given entry point and chain, per the keccak construction in §4.A.
	Hash(entryPoint common.Address, chainID *big.Int) common.Hash

	// clone returns a deep copy so transforms never mutate a shared op.
	clone() UserOperation
}

// GasFields bundles the five (v0.6) or packed (v0.7+) gas parameters for
// validation and gas-cost derivations that don't care about the wire
// layout.
type GasFields struct {
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

func gasFieldsOf(op UserOperation) GasFields {
	return GasFields{
		CallGasLimit:         op.CallGasLimit(),
		VerificationGasLimit: op.VerificationGasLimit(),
		PreVerificationGas:   op.PreVerificationGas(),
		MaxFeePerGas:         op.MaxFeePerGas(),
		MaxPriorityFeePerGas: op.MaxPriorityFeePerGas(),
	}
}

// ValidateInvariants checks the cross-variant structural invariants from
// §3: priority fee must not exceed max fee, and a factory must come with
// non-empty factory data.
func ValidateInvariants(op UserOperation) error {
	gf := gasFieldsOf(op)
	if gf.MaxPriorityFeePerGas != nil && gf.MaxFeePerGas != nil {
		if gf.MaxPriorityFeePerGas.Cmp(gf.MaxFeePerGas) > 0 {
			return ErrPriorityFeeExceedsMax
		}
	}
	_, data, hasFactory := op.Factory()
	if hasFactory && len(data) == 0 {
		return ErrFactoryDataMissing
	}
	return nil
}
