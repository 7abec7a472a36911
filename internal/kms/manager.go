package kms

import (
	"context"
	"sync"
	"time"
)

// Manager owns the id → KeyHandle mapping and dispatches signing to the
// Provider registered for each key's type. It is an owned service with an
// explicit handle type (itself); the handle is cheaply cloneable via
// pointer copy, and internal state sits behind a reader-writer lock.
type Manager struct {
	mu        sync.RWMutex
	keys      map[string]KeyHandle
	providers map[KeyType]Provider

	auditMu sync.Mutex
	audit   []AuditRecord
}

func NewManager() *Manager {
	return &Manager{keys: map[string]KeyHandle{}, providers: map[KeyType]Provider{}}
}

// RegisterProvider associates a Provider with every key of the given type.
func (m *Manager) RegisterProvider(t KeyType, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[t] = p
}

// RegisterKey adds or replaces a key handle.
func (m *Manager) RegisterKey(h KeyHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[h.ID] = h
}

// KeyHandleFor returns a copy of the registered handle for id.
func (m *Manager) KeyHandleFor(id string) (KeyHandle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.keys[id]
	return h, ok
}

// Sign signs digest with the key named by keyID, recording an audit entry
// regardless of outcome. The key must exist and be enabled, and its type
// must have a registered provider.
func (m *Manager) Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error) {
	m.mu.RLock()
	handle, ok := m.keys[keyID]
	var provider Provider
	if ok {
		provider, ok = m.providers[handle.Type]
	}
	m.mu.RUnlock()

	start := time.Now()
	sig, err := m.doSign(ctx, keyID, handle, provider, ok, digest)
	duration := time.Since(start)

	var hardwareValidated bool
	var serviceMetadata map[string]string
	if ap, ok := provider.(auditedProvider); ok {
		hardwareValidated, serviceMetadata = ap.auditMetadata()
	}

	m.recordAudit(AuditRecord{
		Timestamp:         time.Now(),
		KeyID:             keyID,
		Operation:         "sign",
		Success:           err == nil,
		Detail:            auditDetail(err),
		DurationMs:        duration.Milliseconds(),
		HardwareValidated: hardwareValidated,
		Provider:          string(handle.Type),
		ServiceMetadata:   serviceMetadata,
	})
	return sig, err
}

func (m *Manager) doSign(ctx context.Context, keyID string, handle KeyHandle, provider Provider, resolved bool, digest []byte) ([]byte, error) {
	if !resolved {
		return nil, ErrKeyNotFound
	}
	if handle.ID == "" {
		return nil, ErrKeyNotFound
	}
	if !handle.Enabled {
		return nil, ErrKeyDisabled
	}
	if provider == nil {
		return nil, ErrProviderMissing
	}
	return provider.Sign(ctx, keyID, digest)
}

func auditDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// RotateKey replaces the handle for id's address/metadata without
// changing its id, type, or permission set, and records an audit entry.
// The caller is responsible for having already provisioned the new key
// material with the backend provider (e.g. via SoftwareProvider.ImportHexKey
// for a software key) before calling RotateKey.
func (m *Manager) RotateKey(id, newAddress string, metadata map[string]string) error {
	m.mu.Lock()
	handle, ok := m.keys[id]
	if ok {
		handle.Address = newAddress
		if metadata != nil {
			handle.Metadata = metadata
		}
		handle.RotationCount++
		handle.LastRotated = time.Now()
		m.keys[id] = handle
	}
	m.mu.Unlock()

	if !ok {
		m.recordAudit(AuditRecord{Timestamp: time.Now(), KeyID: id, Operation: "rotate", Success: false, Detail: ErrKeyNotFound.Error()})
		return ErrKeyNotFound
	}
	m.recordAudit(AuditRecord{Timestamp: time.Now(), KeyID: id, Operation: "rotate", Success: true})
	return nil
}

func (m *Manager) recordAudit(r AuditRecord) {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()
	m.audit = append(m.audit, r)
}

// AuditLog returns a copy of the append-only audit log.
func (m *Manager) AuditLog() []AuditRecord {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()
	out := make([]AuditRecord, len(m.audit))
	copy(out, m.audit)
	return out
}

// ListKeys returns a copy of every registered key handle, matching the
// original kms.rs list_keys capability.
func (m *Manager) ListKeys() []KeyHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]KeyHandle, 0, len(m.keys))
	for _, h := range m.keys {
		out = append(out, h)
	}
	return out
}

// HealthCheck verifies that id's key is resolvable and that its provider
// can still derive an address for it, matching the original kms.rs
// health_check capability.
func (m *Manager) HealthCheck(ctx context.Context, id string) error {
	m.mu.RLock()
	handle, ok := m.keys[id]
	var provider Provider
	if ok {
		provider, ok = m.providers[handle.Type]
	}
	m.mu.RUnlock()

	if !ok {
		return ErrKeyNotFound
	}
	if provider == nil {
		return ErrProviderMissing
	}
	if hc, ok := provider.(interface {
		HealthCheck(ctx context.Context, keyID string) error
	}); ok {
		return hc.HealthCheck(ctx, id)
	}
	_, err := provider.Address(ctx, id)
	return err
}
