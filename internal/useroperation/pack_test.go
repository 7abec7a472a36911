package useroperation

import (
	"math/big"
	"testing"
)

func TestPackAccountGasLimitsRoundTrip(t *testing.T) {
	tests := []struct {
		name                 string
		verificationGasLimit *big.Int
		callGasLimit         *big.Int
	}{
		{"small values", big.NewInt(100000), big.NewInt(50000)},
		{"large values", big.NewInt(1000000), big.NewInt(500000)},
		{"zero values", big.NewInt(0), big.NewInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackAccountGasLimits(tt.verificationGasLimit, tt.callGasLimit)
			vgl, cgl := UnpackAccountGasLimits(packed)
			if vgl.Cmp(tt.verificationGasLimit) != 0 {
				t.Errorf("verificationGasLimit mismatch: got %v, want %v", vgl, tt.verificationGasLimit)
			}
			if cgl.Cmp(tt.callGasLimit) != 0 {
				t.Errorf("callGasLimit mismatch: got %v, want %v", cgl, tt.callGasLimit)
			}
		})
	}
}

func TestPackGasFeesRoundTrip(t *testing.T) {
	priority := big.NewInt(1000000000)
	maxFee := big.NewInt(10000000000)
	packed := PackGasFees(priority, maxFee)
	gotPriority, gotMax := UnpackGasFees(packed)
	if gotPriority.Cmp(priority) != 0 {
		t.Errorf("maxPriorityFeePerGas mismatch: got %v, want %v", gotPriority, priority)
	}
	if gotMax.Cmp(maxFee) != 0 {
		t.Errorf("maxFeePerGas mismatch: got %v, want %v", gotMax, maxFee)
	}
}

func TestHexRoundTrip(t *testing.T) {
	n := big.NewInt(123456789)
	if got := hexToBigInt(bigIntToHex(n)); got.Cmp(n) != 0 {
		t.Errorf("bigint hex round trip: got %v, want %v", got, n)
	}
	b := []byte{0xde, 0xad, 0xbe, 0xef}
	if got := hexToBytes(bytesToHex(b)); string(got) != string(b) {
		t.Errorf("bytes hex round trip: got %x, want %x", got, b)
	}
}
