package useroperation

import (
	"encoding/hex"
	"math/big"
	"strings"
)

// PackAccountGasLimits packs verification and call gas limits into a single
// bytes32 word: verificationGasLimit (16 bytes) || callGasLimit (16 bytes).
// Grounded on the teacher's erc4337.PackAccountGasLimits.
func PackAccountGasLimits(verificationGasLimit, callGasLimit *big.Int) [32]byte {
	var result [32]byte
	vb := verificationGasLimit.Bytes()
	copy(result[16-len(vb):16], vb)
	cb := callGasLimit.Bytes()
	copy(result[32-len(cb):32], cb)
	return result
}

// UnpackAccountGasLimits reverses PackAccountGasLimits.
func UnpackAccountGasLimits(packed [32]byte) (verificationGasLimit, callGasLimit *big.Int) {
	verificationGasLimit = new(big.Int).SetBytes(packed[:16])
	callGasLimit = new(big.Int).SetBytes(packed[16:])
	return
}

// PackGasFees packs priority and max fee per gas into a single bytes32
// word: maxPriorityFeePerGas (16 bytes) || maxFeePerGas (16 bytes).
func PackGasFees(maxPriorityFeePerGas, maxFeePerGas *big.Int) [32]byte {
	var result [32]byte
	pb := maxPriorityFeePerGas.Bytes()
	copy(result[16-len(pb):16], pb)
	mb := maxFeePerGas.Bytes()
	copy(result[32-len(mb):32], mb)
	return result
}

// UnpackGasFees reverses PackGasFees.
func UnpackGasFees(packed [32]byte) (maxPriorityFeePerGas, maxFeePerGas *big.Int) {
	maxPriorityFeePerGas = new(big.Int).SetBytes(packed[:16])
	maxFeePerGas = new(big.Int).SetBytes(packed[16:])
	return
}

// hex helpers shared by the three codecs.

func bigIntToHex(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

func bytesToHex(b []byte) string {
	if len(b) == 0 {
		return "0x"
	}
	return "0x" + hex.EncodeToString(b)
}

func hexToBigInt(s string) *big.Int {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0)
	}
	n := new(big.Int)
	n.SetString(s, 16)
	return n
}

func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil
	}
	b, _ := hex.DecodeString(s)
	return b
}

func bytes32ToHex(b [32]byte) string {
	return "0x" + hex.EncodeToString(b[:])
}

func hexToBytes32(s string) [32]byte {
	var out [32]byte
	b := hexToBytes(s)
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}
