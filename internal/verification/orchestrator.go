package verification

import (
	"context"
	"math/big"
	"time"

	"github.com/aastar-community/relay-gateway/internal/kms"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

// Orchestrator sequences the five dual-signature steps: version detection,
// business-rule validation, signing-context assembly, KMS signing, and
// response assembly. It holds no per-request state; every Run call is
// independent, mirroring the teacher's stateless Verify dispatch.
type Orchestrator struct {
	Selector *versionselector.Selector
	Rules    RulesOracle
	Signer   *kms.Manager
	KeyID    string
	DeviceID string
	ChainID  *big.Int
}

func NewOrchestrator(selector *versionselector.Selector, rules RulesOracle, signer *kms.Manager, keyID, deviceID string, chainID *big.Int) *Orchestrator {
	return &Orchestrator{Selector: selector, Rules: rules, Signer: signer, KeyID: keyID, DeviceID: deviceID, ChainID: chainID}
}

// Run executes the fixed 5-step sequence described in §4.H. Either a
// rules-stage or a KMS-stage failure aborts with a typed *Error.
func (o *Orchestrator) Run(ctx context.Context, reqCtx Context) (*Response, error) {
	start := reqCtx.Arrived
	if start.IsZero() {
		start = time.Now()
	}

	// Step 1: detect version.
	op, entryPoint, err := o.Selector.Decode(reqCtx.RawOp, "")
	if err != nil {
		return nil, &Error{Stage: "detect_version", Reason: "malformed_user_operation", Err: err}
	}

	// Step 2: business-rule validation.
	totalGas := new(big.Int).Add(op.CallGasLimit(), op.VerificationGasLimit())
	totalGas.Add(totalGas, op.PreVerificationGas())

	balanceOK, membershipOK, sbtEligible, err := o.Rules.CheckEligibility(ctx, reqCtx.AccountID)
	if err != nil {
		return nil, &Error{Stage: "rules", Reason: "oracle_error", Err: err}
	}
	rules := RulesSummary{
		TotalGas:     totalGas.Uint64(),
		BalanceOK:    balanceOK,
		MembershipOK: membershipOK,
		SBTEligible:  sbtEligible,
		Passed:       balanceOK && membershipOK && sbtEligible,
	}
	if !rules.Passed {
		rules.Reason = "eligibility_check_failed"
		return nil, &Error{Stage: "rules", Reason: rules.Reason}
	}

	// Step 3: prepare signing context.
	signCtx := SigningContext{
		OperationType: "sponsor_user_operation",
		Sender:        op.Sender().Hex(),
		EntryPoint:    entryPoint.Hex(),
		GasEstimate:   rules.TotalGas,
		AccountID:     reqCtx.AccountID,
		UserSignature: reqCtx.UserSignature,
		UserPublicKey: reqCtx.UserPublicKey,
		Version:       string(op.Version()),
		RulesPassed:   rules.Passed,
	}

	// Step 4: invoke KMS signing.
	chainID := o.ChainID
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	digest := op.Hash(entryPoint, chainID)
	sig, err := o.Signer.Sign(ctx, o.KeyID, digest.Bytes())
	kmsSummary := KMSSummary{
		DeviceID:        o.DeviceID,
		BothFactorsUsed: signCtx.UserSignature != "" && signCtx.UserPublicKey != "",
		Verified:        err == nil,
		Timestamp:       time.Now(),
	}
	if err != nil {
		return nil, &Error{Stage: "kms", Reason: "signing_failed", Err: err}
	}

	// Step 5: assemble response.
	return &Response{
		RequestID:       reqCtx.RequestID,
		PaymasterSig:    sig,
		DetectedVersion: signCtx.Version,
		Rules:           rules,
		KMS:             kmsSummary,
		ProcessingTime:  time.Since(start),
	}, nil
}
