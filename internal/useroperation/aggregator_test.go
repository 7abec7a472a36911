package useroperation

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestTransformForAggregatorAndReverse(t *testing.T) {
	original := NewBuilderV06(common.HexToAddress("0x0000000000000000000000000000000000abcd"), big.NewInt(1)).
		CallData([]byte{0x01, 0x02, 0x03}).
		Signature(bytes.Repeat([]byte{0xaa}, 65)).
		Build()

	origCost := original.CalldataGasCost()
	origFloor := original.CalldataFloorGasLimit()

	aggregator := common.HexToAddress("0x0000000000000000000000000000000000beef")
	newSig := bytes.Repeat([]byte{0xbb}, 96)
	transformed := TransformForAggregator(original, aggregator, newSig)

	if !bytes.Equal(transformed.Signature(), newSig) {
		t.Fatalf("transformed op should carry the new signature")
	}
	addr, ok := transformed.Aggregator()
	if !ok || addr != aggregator {
		t.Fatalf("transformed op should report the aggregator")
	}

	restored := transformed.WithOriginalSignature()
	if !bytes.Equal(restored.Signature(), original.signature) {
		t.Fatalf("WithOriginalSignature must restore the original signature bytes")
	}
	if restored.CalldataGasCost() != origCost {
		t.Fatalf("restored calldata gas cost mismatch: got %d, want %d", restored.CalldataGasCost(), origCost)
	}
	if restored.CalldataFloorGasLimit() != origFloor {
		t.Fatalf("restored floor gas limit mismatch: got %d, want %d", restored.CalldataFloorGasLimit(), origFloor)
	}
}
