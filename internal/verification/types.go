// Package verification implements the dual-signature orchestration used by
// the gateway's "sponsor a UserOperation end to end" operation. It sequences
// version detection, business-rule validation, signing-context assembly, and
// KMS signing into a single typed flow, following the same
// context-carries-everything shape the teacher uses for its facilitator
// verify hooks (a base context embedded into result/failure variants)
// rather than a loose tuple of return values.
package verification

import (
	"errors"
	"time"
)

// Context is the base context threaded through the orchestration, mirroring
// FacilitatorVerifyContext's "everything a hook might need" shape.
type Context struct {
	RequestID    string
	RawOp        []byte
	EntryPoint   string
	AccountID    string
	UserSignature string
	UserPublicKey string
	ClientIP     string
	Arrived      time.Time
}

// SigningContext is step 3's output: the fully-prepared payload handed to
// KMS signing.
type SigningContext struct {
	OperationType string
	Sender        string
	EntryPoint    string
	GasEstimate   uint64
	AccountID     string
	UserSignature string
	UserPublicKey string
	Version       string
	RulesPassed   bool
}

// RulesSummary reports the outcome of step 2's business-rule validation.
type RulesSummary struct {
	TotalGas         uint64
	BalanceOK        bool
	MembershipOK     bool
	SBTEligible      bool
	Passed           bool
	Reason           string
}

// KMSSummary reports the outcome of step 4's signing call.
type KMSSummary struct {
	DeviceID        string
	BothFactorsUsed bool
	Verified        bool
	Timestamp       time.Time
}

// Response is the orchestration's step-5 assembled result.
type Response struct {
	RequestID       string
	PaymasterSig    []byte
	DetectedVersion string
	Rules           RulesSummary
	KMS             KMSSummary
	ProcessingTime  time.Duration
}

// Error is the typed failure the orchestrator returns when either the
// rules stage or the KMS stage aborts the flow, named rather than a bare
// wrapped error so callers can switch on Stage.
type Error struct {
	Stage  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Stage + ": " + e.Reason + ": " + e.Err.Error()
	}
	return e.Stage + ": " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

var ErrNoSigningKey = errors.New("verification: no signing key configured")
