package useroperation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// word32 left-pads b to 32 bytes, Solidity abi.encode style for
// address/uint256/bytes32 fields.
func word32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func addressWord(addr common.Address) []byte { return word32(addr.Bytes()) }

func uintWord(n *big.Int) []byte {
	if n == nil {
		return word32(nil)
	}
	return word32(n.Bytes())
}

func bytesWord(b []byte) []byte { return word32(b) }

// encodeWords concatenates a sequence of 32-byte abi.encode-style words and
// returns the raw bytes, mirroring Solidity's abi.encode(...) for tuples of
// statically-sized values.
func encodeWords(words ...[]byte) []byte {
	out := make([]byte, 0, 32*len(words))
	for _, w := range words {
		out = append(out, word32(w)...)
	}
	return out
}

// finalizeHash implements the common outer step of the canonical hash
// construction from §4.A:
//
//	keccak( encode( innerHash, entry_point, chain_id ) )
func finalizeHash(innerHash common.Hash, entryPoint common.Address, chainID *big.Int) common.Hash {
	packed := encodeWords(innerHash.Bytes(), addressWord(entryPoint), uintWord(chainID))
	return crypto.Keccak256Hash(packed)
}

// hashV06Fields implements the v0.6 `encode_fields` step: every
// variable-length byte array (init_code, call_data, paymaster_and_data) is
// replaced by its own keccak digest before the outer abi.encode.
func hashV06Fields(op *V06Op) common.Hash {
	packed := encodeWords(
		addressWord(op.sender),
		uintWord(op.nonce),
		crypto.Keccak256(op.initCode),
		crypto.Keccak256(op.callData),
		uintWord(op.callGasLimit),
		uintWord(op.verificationGasLimit),
		uintWord(op.preVerificationGas),
		uintWord(op.maxFeePerGas),
		uintWord(op.maxPriorityFeePerGas),
		crypto.Keccak256(op.paymasterAndData),
	)
	return crypto.Keccak256Hash(packed)
}

// hashPackedFields implements the v0.7/v0.8 `encode_fields` step over the
// packed account-gas-limits/gas-fees layout shared by both variants.
func hashPackedFields(sender common.Address, nonce *big.Int, initCode, callData []byte, accountGasLimits [32]byte, preVerificationGas *big.Int, gasFees [32]byte, paymasterAndData []byte) common.Hash {
	packed := encodeWords(
		addressWord(sender),
		uintWord(nonce),
		crypto.Keccak256(initCode),
		crypto.Keccak256(callData),
		accountGasLimits[:],
		uintWord(preVerificationGas),
		gasFees[:],
		crypto.Keccak256(paymasterAndData),
	)
	return crypto.Keccak256Hash(packed)
}
