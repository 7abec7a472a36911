package blsprotection

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func validBLSSig(fill byte) []byte {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = fill
	}
	return sig
}

func TestValidateSignatureShapeBounds(t *testing.T) {
	if err := ValidateSignatureShape(make([]byte, 47)); err == nil {
		t.Fatalf("47 bytes should be rejected")
	}
	if err := ValidateSignatureShape(make([]byte, 97)); err == nil {
		t.Fatalf("97 bytes should be rejected")
	}
	if err := ValidateSignatureShape(validBLSSig(0xaa)); err != nil {
		t.Fatalf("64-byte non-zero signature should be accepted: %v", err)
	}
	if err := ValidateSignatureShape(make([]byte, 64)); err == nil {
		t.Fatalf("all-zero signature should be rejected")
	}
}

func TestValidateAggregationRequestRejectsDuplicates(t *testing.T) {
	req := AggregationRequest{
		Aggregator:  common.HexToAddress("0x0000000000000000000000000000000000aaaa"),
		MessageHash: common.HexToHash("0x01"),
		Signatures:  [][]byte{validBLSSig(0x01), validBLSSig(0x01)},
	}
	err, flags := ValidateAggregationRequest(req, 256)
	if err == nil {
		t.Fatalf("expected duplicate signature error")
	}
	if !containsFlag(flags, FlagDuplicateSignatures) {
		t.Fatalf("expected duplicate-signatures flag, got %v", flags)
	}
}

func TestValidateAggregationRequestRejectsExcessCount(t *testing.T) {
	sigs := make([][]byte, 3)
	for i := range sigs {
		sigs[i] = validBLSSig(byte(i + 1))
	}
	req := AggregationRequest{
		Aggregator:  common.HexToAddress("0x0000000000000000000000000000000000aaaa"),
		MessageHash: common.HexToHash("0x01"),
		Signatures:  sigs,
	}
	err, flags := ValidateAggregationRequest(req, 2)
	if err == nil || !containsFlag(flags, FlagExcessSignatures) {
		t.Fatalf("expected excess-signatures rejection, got err=%v flags=%v", err, flags)
	}
}

func TestAutoBlacklistOnFailureRate(t *testing.T) {
	p := NewProtector(DefaultConfig())
	aggregator := common.HexToAddress("0x0000000000000000000000000000000000aaaa")

	// 6 failures, 4 successes out of 10: failure rate 0.6 > 0.5.
	for i := 0; i < 10; i++ {
		success := i >= 6
		p.RecordResult(aggregator, success, 10, nil)
	}

	if !p.IsBlacklisted(aggregator) {
		t.Fatalf("expected aggregator to be auto-blacklisted after failure rate exceeded")
	}
	reason, _ := p.BlacklistReason(aggregator)
	if !bytes.Contains([]byte(reason), []byte("High failure rate")) {
		t.Fatalf("expected blacklist reason to mention high failure rate, got %q", reason)
	}
}

func TestAutoBlacklistRequiresMinimumObservations(t *testing.T) {
	p := NewProtector(DefaultConfig())
	aggregator := common.HexToAddress("0x0000000000000000000000000000000000aaaa")

	// 2 failures out of 3 (0.67 > 0.5) but below the 10-observation floor.
	p.RecordResult(aggregator, false, 10, nil)
	p.RecordResult(aggregator, false, 10, nil)
	p.RecordResult(aggregator, true, 10, nil)

	if p.IsBlacklisted(aggregator) {
		t.Fatalf("should not blacklist before the minimum observation count")
	}
}

func TestCleanupExpiredRemovesStaleEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlacklistTTL = time.Millisecond
	p := NewProtector(cfg)
	aggregator := common.HexToAddress("0x0000000000000000000000000000000000aaaa")

	p.Blacklist(aggregator, "manual")
	time.Sleep(5 * time.Millisecond)

	removed := p.CleanupExpired()
	if removed != 1 {
		t.Fatalf("expected 1 entry removed, got %d", removed)
	}
	if p.IsBlacklisted(aggregator) {
		t.Fatalf("expected aggregator to no longer be blacklisted after cleanup")
	}
}

func TestValidateAndCheckRejectsAlreadyBlacklisted(t *testing.T) {
	p := NewProtector(DefaultConfig())
	aggregator := common.HexToAddress("0x0000000000000000000000000000000000aaaa")
	p.Blacklist(aggregator, "manual")

	req := AggregationRequest{Aggregator: aggregator, MessageHash: common.HexToHash("0x01"), Signatures: [][]byte{validBLSSig(1)}}
	err, _ := p.ValidateAndCheck(req)
	if err != ErrAggregatorBlacklisted {
		t.Fatalf("expected ErrAggregatorBlacklisted, got %v", err)
	}
}
