package versionselector

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

func TestSelectStructuralDetectionIgnoresEmptyExplicitVersion(t *testing.T) {
	op := useroperation.NewBuilderV07(common.Address{}, big.NewInt(1)).Build()
	data, err := op.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	version, err := Select(data, "")
	if err != nil || version != useroperation.V07 {
		t.Fatalf("expected structural detection to return v0.7, got %v err %v", version, err)
	}
}

func TestSelectRejectsUnsupportedExplicitVersion(t *testing.T) {
	_, err := Select([]byte(`{}`), "0.5")
	if err == nil {
		t.Fatalf("expected rejection of explicit_version=0.5")
	}
}

func TestSelectorDecodeResolvesEntryPoint(t *testing.T) {
	op := useroperation.NewBuilderV06(common.Address{}, big.NewInt(1)).Build()
	data, _ := op.MarshalJSON()

	sel := NewSelector()
	_, entryPoint, err := sel.Decode(data, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entryPoint.Hex() != common.HexToAddress(useroperation.EntryPointV06Address).Hex() {
		t.Fatalf("expected v0.6 entry point, got %s", entryPoint.Hex())
	}
}
