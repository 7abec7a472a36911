// Package versionselector implements the Version Selector (§4.F): it
// routes an incoming wire-format JSON payload to one of the three
// UserOperation variants, either trusting an explicit client-supplied
// version or falling back to structural auto-detection, and resolves the
// entry-point address for whichever version is selected.
package versionselector

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/useroperation"
)

// ErrVersionUnsupported is returned when an explicit_version names
// something other than "0.6", "0.7", or "0.8".
var ErrVersionUnsupported = errors.New("versionselector: unsupported version")

// ErrMalformedEnvelope is returned when a payload fails the common
// UserOperation envelope schema check, before version-specific decoding
// is ever attempted.
var ErrMalformedEnvelope = errors.New("versionselector: payload does not match the UserOperation envelope schema")

// Selector resolves a UserOperation version and its entry-point address.
// The entry-point table is configuration, not a constant, because v0.8
// deployments vary by chain.
type Selector struct {
	entryPoints map[useroperation.Version]common.Address
}

// NewSelector builds a Selector pre-populated with the canonical v0.6/v0.7
// entry points; callers must supply a v0.8 address via WithEntryPoint
// before v0.8 ops can be routed.
func NewSelector() *Selector {
	return &Selector{
		entryPoints: map[useroperation.Version]common.Address{
			useroperation.V06: common.HexToAddress(useroperation.EntryPointV06Address),
			useroperation.V07: common.HexToAddress(useroperation.EntryPointV07Address),
		},
	}
}

// WithEntryPoint overrides or adds an entry-point address for a version.
func (s *Selector) WithEntryPoint(version useroperation.Version, addr common.Address) *Selector {
	s.entryPoints[version] = addr
	return s
}

// EntryPointFor returns the configured entry-point address for version.
func (s *Selector) EntryPointFor(version useroperation.Version) (common.Address, bool) {
	addr, ok := s.entryPoints[version]
	return addr, ok
}

// Select resolves data's UserOperation version. explicitVersion, if
// non-empty, is trusted outright and validated against the supported set;
// an unsupported value (e.g. "0.5") rejects immediately without running
// structural detection or any downstream module. An empty explicitVersion
// falls back to useroperation.DetectVersion.
func Select(data []byte, explicitVersion string) (useroperation.Version, error) {
	if explicitVersion != "" {
		v := useroperation.Version(explicitVersion)
		switch v {
		case useroperation.V06, useroperation.V07, useroperation.V08:
			return v, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrVersionUnsupported, explicitVersion)
		}
	}
	return useroperation.DetectVersion(data)
}

// Decode resolves the version via Select and fully decodes data into the
// matching UserOperation variant, along with that version's configured
// entry-point address.
func (s *Selector) Decode(data []byte, explicitVersion string) (useroperation.UserOperation, common.Address, error) {
	if err := ValidateEnvelope(data); err != nil {
		return nil, common.Address{}, err
	}

	version, err := Select(data, explicitVersion)
	if err != nil {
		return nil, common.Address{}, err
	}
	op, err := useroperation.DecodeAny(data, version)
	if err != nil {
		return nil, common.Address{}, err
	}
	entryPoint, ok := s.EntryPointFor(version)
	if !ok {
		return nil, common.Address{}, fmt.Errorf("versionselector: no entry point configured for version %q", version)
	}
	return op, entryPoint, nil
}
