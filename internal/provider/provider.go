// Package provider defines the EVM node-RPC collaborator boundary: chain
// id, balance, and code lookups. The gateway's Dependencies carry a
// Provider, but no pipeline module reads from it; §4.C's balance-adequacy
// check goes through authorization.BalanceProvider. ABI bindings and transaction submission
// are out of scope for this repository; this package owns only the
// interface and an in-memory stand-in for tests and dev-mode.
package provider

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is the capability interface the gateway depends on for
// read-only chain state.
type Provider interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

// InMemoryProvider serves balances/code from in-memory maps, useful for
// tests and as a dev-mode stand-in before a real JSON-RPC-backed provider
// is wired in.
type InMemoryProvider struct {
	mu       sync.RWMutex
	chainID  *big.Int
	balances map[common.Address]*big.Int
	code     map[common.Address][]byte
}

func NewInMemoryProvider(chainID *big.Int) *InMemoryProvider {
	return &InMemoryProvider{
		chainID:  chainID,
		balances: map[common.Address]*big.Int{},
		code:     map[common.Address][]byte{},
	}
}

func (p *InMemoryProvider) ChainID(_ context.Context) (*big.Int, error) {
	return p.chainID, nil
}

func (p *InMemoryProvider) SetBalance(addr common.Address, balance *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[addr] = balance
}

func (p *InMemoryProvider) BalanceAt(_ context.Context, addr common.Address) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.balances[addr]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (p *InMemoryProvider) SetCode(addr common.Address, code []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code[addr] = code
}

func (p *InMemoryProvider) CodeAt(_ context.Context, addr common.Address) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.code[addr], nil
}
