package authorization

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceProvider abstracts the on-chain balance lookup the adequacy check
// depends on. Production wiring is expected to call through to the node
// provider collaborator (out of scope for this package, §6); tests use
// InMemoryBalanceProvider.
type BalanceProvider interface {
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// ReputationProvider abstracts a per-sender reputation score lookup.
// Absent scores are treated as the default 75 by the authorization check
// itself, not by the provider.
type ReputationProvider interface {
	Score(ctx context.Context, addr common.Address) (score int, found bool)
}

// InMemoryBalanceProvider is a fixed-map stand-in for the real node
// balance lookup, per the "dummy provider" re-architecture note: a plain
// capability interface with an explicit in-memory implementation kept
// separate from production wiring.
type InMemoryBalanceProvider struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	def      *big.Int
}

func NewInMemoryBalanceProvider(def *big.Int) *InMemoryBalanceProvider {
	return &InMemoryBalanceProvider{balances: map[common.Address]*big.Int{}, def: def}
}

func (p *InMemoryBalanceProvider) Set(addr common.Address, balance *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[addr] = balance
}

func (p *InMemoryBalanceProvider) Balance(_ context.Context, addr common.Address) (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.balances[addr]; ok {
		return b, nil
	}
	if p.def != nil {
		return p.def, nil
	}
	return big.NewInt(0), nil
}

// InMemoryReputationProvider is the same pattern for per-sender scores.
type InMemoryReputationProvider struct {
	mu     sync.RWMutex
	scores map[common.Address]int
}

func NewInMemoryReputationProvider() *InMemoryReputationProvider {
	return &InMemoryReputationProvider{scores: map[common.Address]int{}}
}

func (p *InMemoryReputationProvider) Set(addr common.Address, score int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores[addr] = score
}

func (p *InMemoryReputationProvider) Score(_ context.Context, addr common.Address) (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.scores[addr]
	return s, ok
}
