package authorization

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

func opFromSender(sender common.Address) useroperation.UserOperation {
	return useroperation.NewBuilderV06(sender, big.NewInt(1)).
		CallData([]byte{0x01}).
		MaxFeePerGas(big.NewInt(100)).
		MaxPriorityFeePerGas(big.NewInt(10)).
		Signature(make([]byte, 65)).
		Build()
}

func TestAuthorizeBlocksBlacklistedSender(t *testing.T) {
	sender := common.HexToAddress("0x000000000000000000000000000000deadbeef")
	cfg := Config{Blacklist: map[common.Address]bool{sender: true}}
	d := Authorize(context.Background(), opFromSender(sender), "", cfg)
	if d.Authorized {
		t.Fatalf("expected blacklisted sender to be blocked")
	}
}

func TestAuthorizeRequiresWhitelistMembershipWhenConfigured(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000c0de")
	other := common.HexToAddress("0x0000000000000000000000000000000000face")
	cfg := Config{Whitelist: map[common.Address]bool{other: true}}
	d := Authorize(context.Background(), opFromSender(sender), "", cfg)
	if d.Authorized {
		t.Fatalf("expected non-member to be blocked when whitelist is non-empty")
	}
}

func TestAuthorizeRateLimitWindow(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000c0de")
	limiter := NewInMemoryRateLimiter(10, 60*time.Second)
	cfg := Config{RateLimiter: limiter}

	for i := 0; i < 10; i++ {
		d := Authorize(context.Background(), opFromSender(sender), "", cfg)
		if !d.Authorized {
			t.Fatalf("request %d should be within the rate limit", i+1)
		}
	}
	eleventh := Authorize(context.Background(), opFromSender(sender), "", cfg)
	if eleventh.Authorized {
		t.Fatalf("the 11th request within the window should be blocked")
	}
}

func TestAuthorizeWarnsOnImplausibleNonce(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000c0de")
	op := useroperation.NewBuilderV06(sender, big.NewInt(2_000_000)).
		CallData([]byte{0x01}).
		MaxFeePerGas(big.NewInt(1)).
		MaxPriorityFeePerGas(big.NewInt(1)).
		Signature(make([]byte, 65)).
		Build()
	d := Authorize(context.Background(), op, "", Config{})
	if !d.Authorized {
		t.Fatalf("a warning-only finding must not block authorization")
	}
	if len(d.Warnings) == 0 {
		t.Fatalf("expected an implausible-nonce warning")
	}
}

func TestAuthorizeDefaultReputationWhenAbsent(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000c0de")
	cfg := Config{ReputationProvider: NewInMemoryReputationProvider(), MinReputationScore: 75}
	d := Authorize(context.Background(), opFromSender(sender), "", cfg)
	if !d.Authorized {
		t.Fatalf("absent reputation score should default to 75 and pass a 75 minimum")
	}
}
