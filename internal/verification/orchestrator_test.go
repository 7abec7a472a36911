package verification

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/aastar-community/relay-gateway/internal/kms"
	"github.com/aastar-community/relay-gateway/internal/useroperation"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *InMemoryRulesOracle) {
	t.Helper()
	selector := versionselector.NewSelector()

	provider := kms.NewSoftwareProvider()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr, err := provider.ImportHexKey("paymaster-key", hex.EncodeToString(crypto.FromECDSA(priv)))
	if err != nil {
		t.Fatalf("import key: %v", err)
	}

	mgr := kms.NewManager()
	mgr.RegisterProvider(kms.KeyTypeSoftware, provider)
	mgr.RegisterKey(kms.KeyHandle{ID: "paymaster-key", Type: kms.KeyTypeSoftware, Address: addr.Hex(), Enabled: true})

	rules := NewInMemoryRulesOracle()
	orch := NewOrchestrator(selector, rules, mgr, "paymaster-key", "device-1", big.NewInt(1))
	return orch, rules
}

func sampleOpBytes(t *testing.T) []byte {
	t.Helper()
	op := useroperation.NewBuilderV06(common.HexToAddress("0x00000000000000000000000000000000001234"), big.NewInt(1)).
		CallGasLimit(big.NewInt(100000)).
		VerificationGasLimit(big.NewInt(80000)).
		PreVerificationGas(big.NewInt(21000)).
		MaxFeePerGas(big.NewInt(2000000000)).
		MaxPriorityFeePerGas(big.NewInt(1000000000)).
		Build()
	data, err := op.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestOrchestratorHappyPath(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	resp, err := orch.Run(context.Background(), Context{
		RequestID: "req-1",
		RawOp:     sampleOpBytes(t),
		AccountID: "acct-1",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp.DetectedVersion != "0.6" {
		t.Fatalf("expected v0.6, got %s", resp.DetectedVersion)
	}
	if len(resp.PaymasterSig) != 65 {
		t.Fatalf("expected 65-byte paymaster signature, got %d", len(resp.PaymasterSig))
	}
	if !resp.Rules.Passed {
		t.Fatalf("expected rules to pass by default")
	}
	if resp.Rules.TotalGas != 201000 {
		t.Fatalf("expected total gas 201000, got %d", resp.Rules.TotalGas)
	}
	if !resp.KMS.Verified {
		t.Fatalf("expected KMS summary to report verified")
	}
}

func TestOrchestratorAbortsOnRulesFailure(t *testing.T) {
	orch, rules := newTestOrchestrator(t)
	rules.SetEligibility("acct-2", false, true, true)

	_, err := orch.Run(context.Background(), Context{
		RequestID: "req-2",
		RawOp:     sampleOpBytes(t),
		AccountID: "acct-2",
	})
	if err == nil {
		t.Fatalf("expected rules-stage failure")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Stage != "rules" {
		t.Fatalf("expected a rules-stage *Error, got %#v", err)
	}
}

func TestOrchestratorAbortsOnMalformedOp(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	_, err := orch.Run(context.Background(), Context{
		RequestID: "req-3",
		RawOp:     []byte(`{"not":"a user op"}`),
		AccountID: "acct-1",
	})
	if err == nil {
		t.Fatalf("expected detect_version failure")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Stage != "detect_version" {
		t.Fatalf("expected a detect_version-stage *Error, got %#v", err)
	}
}

func TestOrchestratorAbortsOnMissingSigningKey(t *testing.T) {
	selector := versionselector.NewSelector()
	mgr := kms.NewManager()
	mgr.RegisterProvider(kms.KeyTypeSoftware, kms.NewSoftwareProvider())
	orch := NewOrchestrator(selector, NewInMemoryRulesOracle(), mgr, "missing-key", "device-1", big.NewInt(1))

	_, err := orch.Run(context.Background(), Context{
		RequestID: "req-4",
		RawOp:     sampleOpBytes(t),
		AccountID: "acct-1",
	})
	if err == nil {
		t.Fatalf("expected kms-stage failure")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Stage != "kms" {
		t.Fatalf("expected a kms-stage *Error, got %#v", err)
	}
}
