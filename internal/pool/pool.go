// Package pool defines the mempool/bundle-pool collaborator boundary the
// gateway submits accepted UserOperations to. The pool's internal
// reputation algorithm and eviction policy are out of scope for this
// repository (treated as a black box); this package only owns the
// capability interface the gateway depends on, plus a minimal in-memory
// implementation for tests and dev-mode, following the teacher's split
// between the BundlerClient interface and its concrete GenericBundlerClient.
package pool

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Submission is the accepted-op envelope the gateway hands to the pool
// after the pipeline produces a submit decision.
type Submission struct {
	Hash       common.Hash
	RawOp      []byte
	EntryPoint common.Address
	Version    string
}

// Receipt mirrors the eth_getUserOperationReceipt collaborator contract.
type Receipt struct {
	UserOpHash    common.Hash
	Sender        common.Address
	Success       bool
	TransactionHash common.Hash
	BlockNumber   uint64
}

// Pool is the capability interface the gateway depends on: submit,
// look up a previously-submitted op, and fetch its receipt once mined.
type Pool interface {
	Submit(ctx context.Context, sub Submission) error
	GetByHash(ctx context.Context, hash common.Hash) (Submission, bool)
	GetReceipt(ctx context.Context, hash common.Hash) (Receipt, bool)
}

// InMemoryPool is a test/dev-mode Pool that never actually bundles or
// submits on-chain: Submit just records the op, and receipts must be
// injected via SetReceipt to simulate mining.
type InMemoryPool struct {
	mu        sync.RWMutex
	submitted map[common.Hash]Submission
	receipts  map[common.Hash]Receipt
}

func NewInMemoryPool() *InMemoryPool {
	return &InMemoryPool{
		submitted: map[common.Hash]Submission{},
		receipts:  map[common.Hash]Receipt{},
	}
}

func (p *InMemoryPool) Submit(_ context.Context, sub Submission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted[sub.Hash] = sub
	return nil
}

func (p *InMemoryPool) GetByHash(_ context.Context, hash common.Hash) (Submission, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sub, ok := p.submitted[hash]
	return sub, ok
}

func (p *InMemoryPool) GetReceipt(_ context.Context, hash common.Hash) (Receipt, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.receipts[hash]
	return r, ok
}

// SetReceipt injects a receipt, simulating the op having been mined.
func (p *InMemoryPool) SetReceipt(r Receipt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receipts[r.UserOpHash] = r
}
