package pool

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestInMemoryPoolSubmitAndLookup(t *testing.T) {
	p := NewInMemoryPool()
	hash := common.HexToHash("0x01")
	sub := Submission{Hash: hash, RawOp: []byte("{}"), Version: "0.7"}

	if err := p.Submit(context.Background(), sub); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, ok := p.GetByHash(context.Background(), hash)
	if !ok || got.Version != "0.7" {
		t.Fatalf("expected submitted op to be retrievable, got %+v ok=%v", got, ok)
	}

	if _, ok := p.GetReceipt(context.Background(), hash); ok {
		t.Fatalf("expected no receipt before SetReceipt")
	}
	p.SetReceipt(Receipt{UserOpHash: hash, Success: true})
	receipt, ok := p.GetReceipt(context.Background(), hash)
	if !ok || !receipt.Success {
		t.Fatalf("expected injected receipt to be retrievable")
	}
}
