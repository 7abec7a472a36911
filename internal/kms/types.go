// Package kms abstracts UserOperation signing behind a provider-polymorphic
// key-handle model: each key has an id, a type tag naming which backend
// holds the material, a derived address, an enabled flag, a permission
// set, and arbitrary metadata (§3's "Signing keys"). The manager owns the
// id → key-handle mapping; key material itself is never read out of the
// handle, only exercised through Sign.
package kms

import "time"

// KeyType tags which backend owns a key's material.
type KeyType string

const (
	KeyTypeSoftware       KeyType = "software"
	KeyTypeCloudKMS       KeyType = "cloudkms"
	KeyTypeHSM            KeyType = "hsm"
	KeyTypeHardwareWallet KeyType = "hardwarewallet"
	KeyTypeTEE            KeyType = "tee"
)

// KeyHandle is the id → metadata mapping entry the manager owns. It never
// carries key material; the material lives only inside the Provider for
// its Type. RotationCount/LastRotated are bumped by RotateKey, matching
// the original kms.rs rotate_key's metadata bookkeeping.
type KeyHandle struct {
	ID            string
	Type          KeyType
	Address       string
	Enabled       bool
	Permissions   []string
	Metadata      map[string]string
	RotationCount int
	LastRotated   time.Time
}

// AuditRecord is one append-only log entry produced by a signing or
// rotation operation. Records are plain, fully serializable data kept in
// the manager's in-memory log (AuditLog returns a copy); they are not
// written to a file. DurationMs,
// HardwareValidated, Provider, and ServiceMetadata mirror the original
// kms.rs SigningAuditInfo shape.
type AuditRecord struct {
	Timestamp         time.Time
	KeyID             string
	Operation         string
	Success           bool
	Detail            string
	DurationMs        int64
	HardwareValidated bool
	Provider          string
	ServiceMetadata   map[string]string
}
