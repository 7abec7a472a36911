package kms

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrKeyNotFound     = errors.New("kms: key not found")
	ErrKeyDisabled     = errors.New("kms: key is disabled")
	ErrProviderMissing = errors.New("kms: no provider registered for key type")
)

// Provider signs a digest for a given key id and reports the key's
// derived address. Every KeyType above has exactly one Provider
// implementation registered with a Manager.
type Provider interface {
	Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error)
	Address(ctx context.Context, keyID string) (common.Address, error)
}

// SoftwareProvider holds raw ECDSA private keys in process memory,
// grounded on the signer's ClientSigner pattern: crypto.HexToECDSA to
// parse, crypto.Sign to produce a 65-byte signature, and the v
// recovery-id adjustment (+27) that makes it an Ethereum-standard
// signature rather than a raw secp256k1 one.
type SoftwareProvider struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PrivateKey
}

func NewSoftwareProvider() *SoftwareProvider {
	return &SoftwareProvider{keys: map[string]*ecdsa.PrivateKey{}}
}

// ImportHexKey registers a hex-encoded private key under keyID.
func (p *SoftwareProvider) ImportHexKey(keyID, privateKeyHex string) (common.Address, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("kms: invalid private key for %q: %w", keyID, err)
	}
	p.mu.Lock()
	p.keys[keyID] = key
	p.mu.Unlock()
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func (p *SoftwareProvider) Sign(_ context.Context, keyID string, digest []byte) ([]byte, error) {
	p.mu.RLock()
	key, ok := p.keys[keyID]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrKeyNotFound
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("kms: sign with %q: %w", keyID, err)
	}
	sig[64] += 27
	return sig, nil
}

func (p *SoftwareProvider) Address(_ context.Context, keyID string) (common.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key, ok := p.keys[keyID]
	if !ok {
		return common.Address{}, ErrKeyNotFound
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// RemoteSigner is the minimal call-out interface the production
// cloudKMS/HSM/hardware-wallet providers delegate to: given a key
// reference and digest, return a raw signature. Production wiring
// supplies a real implementation (a cloud KMS SDK client, a PKCS#11
// session, a hardware-wallet USB transport); this package owns the
// per-provider behavior around that call (simulated latency, audit
// metadata), grounded on the original kms.rs MockKmsProvider.sign's
// per-key-type table.
type RemoteSigner interface {
	SignRemote(ctx context.Context, keyRef string, digest []byte) ([]byte, error)
	AddressOf(ctx context.Context, keyRef string) (common.Address, error)
}

// auditedProvider is implemented by providers that contribute extra
// per-signing detail beyond the digest/signature exchange, mirroring the
// original kms.rs SigningAuditInfo.hardware_validated/service_metadata.
type auditedProvider interface {
	auditMetadata() (hardwareValidated bool, serviceMetadata map[string]string)
}

// providerProfile mirrors the simulated per-key-type latency and
// hardware-validated flag from kms.rs's MockKmsProvider.sign.
type providerProfile struct {
	simulatedLatency  time.Duration
	hardwareValidated bool
}

var providerProfiles = map[KeyType]providerProfile{
	KeyTypeCloudKMS:       {120 * time.Millisecond, false},
	KeyTypeHSM:            {50 * time.Millisecond, true},
	KeyTypeHardwareWallet: {2000 * time.Millisecond, true},
	KeyTypeTEE:            {80 * time.Millisecond, true},
}

func sleepProfile(ctx context.Context, t KeyType) error {
	profile, ok := providerProfiles[t]
	if !ok || profile.simulatedLatency == 0 {
		return nil
	}
	timer := time.NewTimer(profile.simulatedLatency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func profileAuditMetadata(t KeyType) (bool, map[string]string) {
	profile := providerProfiles[t]
	return profile.hardwareValidated, map[string]string{
		"key_type":             string(t),
		"simulated_latency_ms": strconv.FormatInt(profile.simulatedLatency.Milliseconds(), 10),
	}
}

// remoteProvider adapts a RemoteSigner to Provider for the cloudKMS, HSM,
// and hardware-wallet key types, applying each type's simulated latency
// ahead of the delegated call. It is unexported because callers should go
// through the named constructors below, which exist so the manager's
// provider-by-type table reads clearly at the call site.
type remoteProvider struct {
	signer  RemoteSigner
	keyType KeyType
}

func (p *remoteProvider) Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error) {
	if err := sleepProfile(ctx, p.keyType); err != nil {
		return nil, err
	}
	return p.signer.SignRemote(ctx, keyID, digest)
}

func (p *remoteProvider) Address(ctx context.Context, keyID string) (common.Address, error) {
	return p.signer.AddressOf(ctx, keyID)
}

func (p *remoteProvider) auditMetadata() (bool, map[string]string) {
	return profileAuditMetadata(p.keyType)
}

// cloudKMSProvider additionally validates the configured region, grounded
// on aws_kms.rs's AwsKmsProvider::new region-format check.
type cloudKMSProvider struct {
	remoteProvider
	region string
}

// NewCloudKMSProvider wraps a cloud KMS RemoteSigner (e.g. AWS KMS, GCP
// Cloud KMS) as a Provider. region is validated the same way
// aws_kms.rs rejects a malformed AWS region at construction time.
func NewCloudKMSProvider(signer RemoteSigner, region string) (Provider, error) {
	if !validCloudRegion(region) {
		return nil, fmt.Errorf("kms: invalid cloud KMS region %q", region)
	}
	return &cloudKMSProvider{
		remoteProvider: remoteProvider{signer: signer, keyType: KeyTypeCloudKMS},
		region:         region,
	}, nil
}

func validCloudRegion(region string) bool {
	return strings.Contains(region, "-") && len(region) >= 9
}

// HealthCheck verifies the named key still resolves through the remote
// signer, mirroring aws_kms.rs's health_check probing the configured key.
func (p *cloudKMSProvider) HealthCheck(ctx context.Context, keyID string) error {
	if _, err := p.signer.AddressOf(ctx, keyID); err != nil {
		return fmt.Errorf("kms: cloud KMS health check failed for %q (region %s): %w", keyID, p.region, err)
	}
	return nil
}

// NewHSMProvider wraps a PKCS#11-backed RemoteSigner as a Provider.
func NewHSMProvider(signer RemoteSigner) Provider {
	return &remoteProvider{signer: signer, keyType: KeyTypeHSM}
}

// NewHardwareWalletProvider wraps a hardware-wallet transport (Ledger,
// Trezor) RemoteSigner as a Provider.
func NewHardwareWalletProvider(signer RemoteSigner) Provider {
	return &remoteProvider{signer: signer, keyType: KeyTypeHardwareWallet}
}

// teeCommand names an OP-TEE trusted-application command, mirroring the
// TA_SUPER_RELAY_CMD_* ids optee_kms.rs invokes over TEEC_InvokeCommand.
type teeCommand int

const (
	teeCmdSignMessage teeCommand = iota
	teeCmdGetPublicKey
)

// teeSession models an OP-TEE client-API session against a trusted
// application: TEEC_OpenSession once, TEEC_InvokeCommand per operation,
// TEEC_CloseSession on shutdown. Real hardware access goes through cgo
// bindings this package deliberately doesn't carry — §4.G names the TEE
// provider as the one boundary production wiring supplies itself — but
// the session/command control flow and the recovery-id-to-v assembly are
// real, grounded on optee_kms.rs's OpteeSession and
// OpteKmsProvider::sign_message.
type teeSession struct {
	mu   sync.Mutex
	open bool
	keys map[string]*ecdsa.PrivateKey
}

func newTEESession() *teeSession {
	return &teeSession{keys: map[string]*ecdsa.PrivateKey{}}
}

func (s *teeSession) openSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return errors.New("kms: tee session already open")
	}
	s.open = true
	return nil
}

func (s *teeSession) closeSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *teeSession) importKey(keyID string, key *ecdsa.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errors.New("kms: tee session not open")
	}
	s.keys[keyID] = key
	return nil
}

// invokeCommand dispatches a single TA command against the open session.
func (s *teeSession) invokeCommand(cmd teeCommand, keyID string, digest []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, errors.New("kms: tee session not open")
	}
	key, ok := s.keys[keyID]
	if !ok {
		return nil, ErrKeyNotFound
	}
	switch cmd {
	case teeCmdSignMessage:
		sig, err := crypto.Sign(digest, key)
		if err != nil {
			return nil, fmt.Errorf("kms: tee sign_message failed: %w", err)
		}
		// Ethereum v assembly from the TA's recovery id, grounded on
		// optee_kms.rs: `v: 27 + signature_result.recovery_id`.
		recoveryID := sig[64]
		sig[64] = 27 + recoveryID
		return sig, nil
	case teeCmdGetPublicKey:
		addr := crypto.PubkeyToAddress(key.PublicKey)
		return addr.Bytes(), nil
	default:
		return nil, fmt.Errorf("kms: unsupported tee command %d", cmd)
	}
}

// TEEProvider signs through a simulated OP-TEE session. It is a concrete
// type rather than a RemoteSigner-backed remoteProvider because its
// session lifecycle (open once, invoke per request, close on shutdown) is
// itself part of what this component must model.
type TEEProvider struct {
	session *teeSession
}

// NewTEEProvider opens a TEE session and returns a Provider backed by it.
// Callers must call Close when done with it.
func NewTEEProvider() (*TEEProvider, error) {
	session := newTEESession()
	if err := session.openSession(); err != nil {
		return nil, err
	}
	return &TEEProvider{session: session}, nil
}

// ImportHexKey provisions key material into the TEE session under keyID.
// Production TEE deployments generate the key inside the trusted
// application (optee_kms.rs's generate_key command); this shim accepts
// material from the caller for development and testing.
func (p *TEEProvider) ImportHexKey(keyID, privateKeyHex string) (common.Address, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("kms: invalid tee key for %q: %w", keyID, err)
	}
	if err := p.session.importKey(keyID, key); err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func (p *TEEProvider) Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error) {
	if err := sleepProfile(ctx, KeyTypeTEE); err != nil {
		return nil, err
	}
	return p.session.invokeCommand(teeCmdSignMessage, keyID, digest)
}

func (p *TEEProvider) Address(_ context.Context, keyID string) (common.Address, error) {
	raw, err := p.session.invokeCommand(teeCmdGetPublicKey, keyID, nil)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(raw), nil
}

// Close ends the TEE session, mirroring optee_kms.rs's OpteeSession Drop
// (TEEC_CloseSession/TEEC_FinalizeContext).
func (p *TEEProvider) Close() { p.session.closeSession() }

func (p *TEEProvider) auditMetadata() (bool, map[string]string) {
	return profileAuditMetadata(KeyTypeTEE)
}
