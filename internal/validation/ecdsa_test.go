package validation

import (
	"bytes"
	"math/big"
	"testing"
)

func sigOfLength(n int) []byte {
	sig := make([]byte, n)
	for i := range sig {
		sig[i] = 0x01
	}
	return sig
}

func TestValidateSignatureShapeBoundaryLengths(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantValid bool
		wantSev   Severity
	}{
		{"63 bytes critical", 63, false, SeverityCritical},
		{"64 bytes compact valid with warning", 64, true, SeverityWarning},
		{"65 bytes standard valid", 65, true, SeverityInfo},
		{"66 bytes critical", 66, false, SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := sigOfLength(tt.length)
			if tt.length == 65 {
				sig[64] = 27
			}
			res, _ := ValidateSignatureShape(sig, true)
			if res.Valid != tt.wantValid {
				t.Fatalf("valid: got %v, want %v (%s)", res.Valid, tt.wantValid, res.Message)
			}
			if res.Severity != tt.wantSev {
				t.Fatalf("severity: got %v, want %v", res.Severity, tt.wantSev)
			}
		})
	}
}

func TestValidateSignatureRejectsZeroRS(t *testing.T) {
	sig := make([]byte, 65)
	sig[64] = 27
	// r = 0, s = 1
	sig[63] = 1
	res, _ := ValidateSignatureShape(sig, true)
	if res.Valid {
		t.Fatalf("expected r=0 to be rejected")
	}

	sig2 := make([]byte, 65)
	sig2[31] = 1 // r = 1
	sig2[64] = 27
	// s = 0
	res2, _ := ValidateSignatureShape(sig2, true)
	if res2.Valid {
		t.Fatalf("expected s=0 to be rejected")
	}
}

func TestLowHighSBoundary(t *testing.T) {
	halfN := new(big.Int).Set(secp256k1HalfN)
	halfNPlusOne := new(big.Int).Add(halfN, big.NewInt(1))

	sigLow := make([]byte, 65)
	sigLow[31] = 1
	copy(sigLow[32:64], leftPad32(halfN.Bytes()))
	sigLow[64] = 27
	res, _ := ValidateSignatureShape(sigLow, true)
	if !res.Valid {
		t.Fatalf("s = n/2 should be valid (low-s), got %v: %s", res.Valid, res.Message)
	}

	sigHigh := make([]byte, 65)
	sigHigh[31] = 1
	copy(sigHigh[32:64], leftPad32(halfNPlusOne.Bytes()))
	sigHigh[64] = 27
	res2, _ := ValidateSignatureShape(sigHigh, true)
	if res2.Valid {
		t.Fatalf("s = n/2 + 1 should be high-s and Critical in strict mode")
	}

	res3, _ := ValidateSignatureShape(sigHigh, false)
	if !res3.Valid || res3.Severity != SeverityWarning {
		t.Fatalf("s = n/2 + 1 should be Warning in lenient mode, got valid=%v severity=%v", res3.Valid, res3.Severity)
	}
}

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func TestNormalizeIsIdempotent(t *testing.T) {
	sig := &ParsedSignature{
		R:    big.NewInt(1),
		S:    new(big.Int).Add(secp256k1HalfN, big.NewInt(5)),
		V:    27,
		HasV: true,
	}
	once := Normalize(sig)
	twice := Normalize(once)
	if once.S.Cmp(twice.S) != 0 || once.V != twice.V {
		t.Fatalf("normalize must be idempotent: once=%+v twice=%+v", once, twice)
	}
	if !bytes.Equal(once.R.Bytes(), sig.R.Bytes()) {
		t.Fatalf("normalize must not alter r")
	}
	if once.S.Cmp(secp256k1HalfN) > 0 {
		t.Fatalf("normalized s must be low")
	}
}
