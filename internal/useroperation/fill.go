package useroperation

import (
	"crypto/rand"
	"math/big"
)

// FillMode selects how MaxFill/RandomFill populate omitted numeric gas
// fields on an otherwise-constructed op, per §4.A's encoding-size and
// DA-calldata-cost estimation use cases.
type FillMode int

const (
	// FillModeMax fills with the maximum value representable under ceiling,
	// for worst-case encoded-length estimation.
	FillModeMax FillMode = iota
	// FillModeRandom fills with random bytes of the same byte-length as the
	// max-fill value, so the two modes agree on encoded length.
	FillModeRandom
)

// maxFillValue returns the largest big.Int representable in byteLen bytes,
// capped by ceiling when ceiling is non-nil and smaller.
func maxFillValue(byteLen int, ceiling *big.Int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(byteLen*8))
	max.Sub(max, big.NewInt(1))
	if ceiling != nil && ceiling.Cmp(max) < 0 {
		return new(big.Int).Set(ceiling)
	}
	return max
}

// randomFillValue returns a random value occupying exactly the same
// byte-length as maxFillValue(byteLen, ceiling), so max_fill and
// random_fill agree on encoded length as required by §8.
func randomFillValue(byteLen int, ceiling *big.Int) *big.Int {
	ref := maxFillValue(byteLen, ceiling)
	refLen := len(ref.Bytes())
	if refLen == 0 {
		return big.NewInt(0)
	}
	buf := make([]byte, refLen)
	if _, err := rand.Read(buf); err != nil {
		return ref
	}
	// Force the top byte non-zero so the encoded length matches ref exactly.
	if buf[0] == 0 {
		buf[0] = 1
	}
	return new(big.Int).SetBytes(buf)
}

// gasFieldByteLen is the conventional byte width used for worst-case
// estimation of each gas-like field; 16 bytes matches the packed
// accountGasLimits/gasFees half-words used by v0.7+.
const gasFieldByteLen = 16

// FillGasFields fills any nil field in gf with either the max or a
// length-matching random value, capped by ceiling.
func FillGasFields(gf *GasFields, mode FillMode, ceiling *big.Int) {
	fillOne := func(field **big.Int) {
		if *field != nil {
			return
		}
		switch mode {
		case FillModeRandom:
			*field = randomFillValue(gasFieldByteLen, ceiling)
		default:
			*field = maxFillValue(gasFieldByteLen, ceiling)
		}
	}
	fillOne(&gf.CallGasLimit)
	fillOne(&gf.VerificationGasLimit)
	fillOne(&gf.PreVerificationGas)
	fillOne(&gf.MaxFeePerGas)
	fillOne(&gf.MaxPriorityFeePerGas)
}
