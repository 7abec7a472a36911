package kms

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestManagerSignsWithSoftwareProvider(t *testing.T) {
	mgr := NewManager()
	provider := NewSoftwareProvider()
	mgr.RegisterProvider(KeyTypeSoftware, provider)

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))
	addr, err := provider.ImportHexKey("key-1", hexKey)
	if err != nil {
		t.Fatalf("import key: %v", err)
	}

	mgr.RegisterKey(KeyHandle{ID: "key-1", Type: KeyTypeSoftware, Address: addr.Hex(), Enabled: true})

	digest := crypto.Keccak256([]byte("hello"))
	sig, err := mgr.Sign(context.Background(), "key-1", digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("expected a 65-byte signature, got %d bytes", len(sig))
	}
	if sig[64] != 27 && sig[64] != 28 {
		t.Fatalf("expected Ethereum-adjusted v (27/28), got %d", sig[64])
	}
}

func TestManagerRejectsDisabledKey(t *testing.T) {
	mgr := NewManager()
	mgr.RegisterProvider(KeyTypeSoftware, NewSoftwareProvider())
	mgr.RegisterKey(KeyHandle{ID: "key-1", Type: KeyTypeSoftware, Enabled: false})

	_, err := mgr.Sign(context.Background(), "key-1", []byte("digest"))
	if err != ErrKeyDisabled {
		t.Fatalf("expected ErrKeyDisabled, got %v", err)
	}
}

func TestManagerRecordsAuditRegardlessOfOutcome(t *testing.T) {
	mgr := NewManager()
	_, _ = mgr.Sign(context.Background(), "missing-key", []byte("digest"))

	log := mgr.AuditLog()
	if len(log) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(log))
	}
	if log[0].Success {
		t.Fatalf("expected audit record to reflect failure")
	}
}

func TestRotateKeyUpdatesAddress(t *testing.T) {
	mgr := NewManager()
	mgr.RegisterKey(KeyHandle{ID: "key-1", Type: KeyTypeSoftware, Address: "0xold", Enabled: true})

	if err := mgr.RotateKey("key-1", "0xnew", map[string]string{"rotated": "true"}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	handle, ok := mgr.KeyHandleFor("key-1")
	if !ok || handle.Address != "0xnew" {
		t.Fatalf("expected rotated address, got %+v", handle)
	}
	if handle.RotationCount != 1 {
		t.Fatalf("expected rotation count 1, got %d", handle.RotationCount)
	}
	if handle.LastRotated.IsZero() {
		t.Fatalf("expected last rotated to be set")
	}
}

func TestManagerListKeys(t *testing.T) {
	mgr := NewManager()
	mgr.RegisterKey(KeyHandle{ID: "key-1", Type: KeyTypeSoftware, Enabled: true})
	mgr.RegisterKey(KeyHandle{ID: "key-2", Type: KeyTypeSoftware, Enabled: true})

	keys := mgr.ListKeys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestManagerHealthCheck(t *testing.T) {
	mgr := NewManager()
	provider := NewSoftwareProvider()
	mgr.RegisterProvider(KeyTypeSoftware, provider)

	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))
	addr, err := provider.ImportHexKey("key-1", hexKey)
	if err != nil {
		t.Fatalf("import key: %v", err)
	}
	mgr.RegisterKey(KeyHandle{ID: "key-1", Type: KeyTypeSoftware, Address: addr.Hex(), Enabled: true})

	if err := mgr.HealthCheck(context.Background(), "key-1"); err != nil {
		t.Fatalf("health check: %v", err)
	}
	if err := mgr.HealthCheck(context.Background(), "missing-key"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}
