package provider

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestInMemoryProviderBalanceAndCode(t *testing.T) {
	p := NewInMemoryProvider(big.NewInt(1))
	addr := common.HexToAddress("0x0000000000000000000000000000000000aaaa")

	bal, err := p.BalanceAt(context.Background(), addr)
	if err != nil || bal.Sign() != 0 {
		t.Fatalf("expected zero default balance, got %v err %v", bal, err)
	}

	p.SetBalance(addr, big.NewInt(1_000_000))
	bal, _ = p.BalanceAt(context.Background(), addr)
	if bal.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("expected set balance to be retrievable, got %v", bal)
	}

	p.SetCode(addr, []byte{0x60, 0x80})
	code, _ := p.CodeAt(context.Background(), addr)
	if len(code) != 2 {
		t.Fatalf("expected 2-byte code, got %v", code)
	}
}
