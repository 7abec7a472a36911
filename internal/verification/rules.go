package verification

import (
	"context"
	"sync"
)

// RulesOracle answers the business-rule eligibility query step 2 needs:
// does the account have sufficient balance, membership, and SBT standing
// to be sponsored. Production wiring points this at an external service;
// InMemoryRulesOracle is the test/dev-mode stand-in.
type RulesOracle interface {
	CheckEligibility(ctx context.Context, accountID string) (balanceOK, membershipOK, sbtEligible bool, err error)
}

// InMemoryRulesOracle keeps per-account eligibility flags in memory, all
// defaulting to true unless explicitly overridden.
type InMemoryRulesOracle struct {
	mu      sync.RWMutex
	entries map[string]eligibility
}

type eligibility struct {
	balanceOK    bool
	membershipOK bool
	sbtEligible  bool
}

func NewInMemoryRulesOracle() *InMemoryRulesOracle {
	return &InMemoryRulesOracle{entries: map[string]eligibility{}}
}

// SetEligibility records the eligibility flags for accountID.
func (o *InMemoryRulesOracle) SetEligibility(accountID string, balanceOK, membershipOK, sbtEligible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[accountID] = eligibility{balanceOK, membershipOK, sbtEligible}
}

func (o *InMemoryRulesOracle) CheckEligibility(_ context.Context, accountID string) (bool, bool, bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.entries[accountID]
	if !ok {
		return true, true, true, nil
	}
	return e.balanceOK, e.membershipOK, e.sbtEligible, nil
}
