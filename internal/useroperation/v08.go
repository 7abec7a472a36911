package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// V08Op is the v0.7 packed layout plus an optional EIP-7702 authorization
// tuple, letting an EOA sender delegate its code to a smart-account
// implementation inline with the UserOperation that uses it.
type V08Op struct {
	V07Op

	authorization    Authorization
	hasAuthorization bool
}

var _ UserOperation = (*V08Op)(nil)

// NewV08Op constructs a v0.8 UserOperation by attaching an optional
// authorization tuple to an otherwise-v0.7-shaped op.
func NewV08Op(base *V07Op, auth Authorization, hasAuthorization bool) *V08Op {
	return &V08Op{V07Op: *base, authorization: auth, hasAuthorization: hasAuthorization}
}

func (op *V08Op) Version() Version { return V08 }

func (op *V08Op) Authorization() (Authorization, bool) {
	return op.authorization, op.hasAuthorization
}

func (op *V08Op) Hash(entryPoint common.Address, chainID *big.Int) common.Hash {
	// The authorization tuple authorizes code delegation at the account
	// level and is verified against the EOA signature separately; it is
	// not folded into the UserOperation content hash itself.
	return op.V07Op.Hash(entryPoint, chainID)
}

func (op *V08Op) clone() UserOperation {
	baseClone := op.V07Op.clone().(*V07Op)
	cp := &V08Op{V07Op: *baseClone, authorization: op.authorization, hasAuthorization: op.hasAuthorization}
	return cp
}
