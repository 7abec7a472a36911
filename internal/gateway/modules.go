package gateway

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aastar-community/relay-gateway/internal/authorization"
	"github.com/aastar-community/relay-gateway/internal/pipeline"
	"github.com/aastar-community/relay-gateway/internal/policy"
	"github.com/aastar-community/relay-gateway/internal/pool"
	"github.com/aastar-community/relay-gateway/internal/riskanalysis"
	"github.com/aastar-community/relay-gateway/internal/useroperation"
	"github.com/aastar-community/relay-gateway/internal/validation"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

// Scratch keys shared between pipeline modules within one request.
const (
	scratchRawOp      = "raw_op"
	scratchEntryPoint = "entry_point"
)

// baseModule supplies the bookkeeping every concrete module shares
// (enabled flag, priority, name, no-op lifecycle hooks), so each concrete
// module only implements Process and, when it needs one, ShouldProcess.
type baseModule struct {
	name     string
	priority int
	enabled  bool
}

func (m *baseModule) Name() string  { return m.name }
func (m *baseModule) Priority() int { return m.priority }
func (m *baseModule) Enabled() bool { return m.enabled }
func (m *baseModule) ShouldProcess(context.Context, *pipeline.Context) bool { return true }
func (m *baseModule) Initialize(map[string]interface{}) error               { return nil }
func (m *baseModule) Shutdown(context.Context) error                        { return nil }

// decodeModule is the pipeline's first stage: it resolves the UserOperation
// version (§4.F) from the raw wire bytes stashed in Scratch by the
// front-end and populates pctx.Op / the entry-point scratch slot for
// downstream modules.
type decodeModule struct {
	baseModule
	selector *versionselector.Selector
}

func newDecodeModule(selector *versionselector.Selector) *decodeModule {
	return &decodeModule{baseModule: baseModule{name: "decode_version", priority: 10, enabled: true}, selector: selector}
}

func (m *decodeModule) Process(_ context.Context, pctx *pipeline.Context) pipeline.Result {
	raw, _ := pctx.Scratch[scratchRawOp].([]byte)
	op, entryPoint, err := m.selector.Decode(raw, "")
	if err != nil {
		return pipeline.TerminateErr(NewGatewayError(KindInvalidParams, "malformed user operation", err))
	}
	pctx.Op = op
	pctx.Scratch[scratchEntryPoint] = entryPoint
	return pipeline.Continue()
}

// validationModule runs §4.B's signature/field integrity checks.
type validationModule struct {
	baseModule
	limits validation.Limits
}

func newValidationModule(limits validation.Limits) *validationModule {
	return &validationModule{baseModule: baseModule{name: "validation", priority: 20, enabled: true}, limits: limits}
}

func (m *validationModule) Process(_ context.Context, pctx *pipeline.Context) pipeline.Result {
	op := pctx.Op.(useroperation.UserOperation)
	entryPoint := pctx.Scratch[scratchEntryPoint].(common.Address)

	result := validation.Validate(op, entryPoint, m.limits)
	pctx.Metrics["validation_score"] = float64(result.Score)
	if !result.Pass {
		return pipeline.TerminateErr(NewGatewayError(KindRejected, "validation failed", fmt.Errorf("score %d: %v", result.Score, result.Critical)))
	}
	return pipeline.Continue()
}

// authorizationModule runs §4.C's 8-check authorization engine.
type authorizationModule struct {
	baseModule
	cfg authorization.Config
}

func newAuthorizationModule(cfg authorization.Config) *authorizationModule {
	return &authorizationModule{baseModule: baseModule{name: "authorization", priority: 30, enabled: true}, cfg: cfg}
}

func (m *authorizationModule) Process(ctx context.Context, pctx *pipeline.Context) pipeline.Result {
	op := pctx.Op.(useroperation.UserOperation)
	decision := authorization.Authorize(ctx, op, pctx.ClientIP, m.cfg)
	pctx.Metrics["authorization_score"] = float64(decision.Score)
	if !decision.Authorized {
		return pipeline.TerminateErr(NewGatewayError(KindRejected, "authorization failed", fmt.Errorf("%v", decision.Blocking)))
	}
	return pipeline.Continue()
}

// riskModule runs §4.D's contract risk analyzer against the op's sender.
type riskModule struct {
	baseModule
	cfg        riskanalysis.Config
	maxRisk    int
}

func newRiskModule(cfg riskanalysis.Config, maxRisk int) *riskModule {
	return &riskModule{baseModule: baseModule{name: "risk_analysis", priority: 40, enabled: true}, cfg: cfg, maxRisk: maxRisk}
}

func (m *riskModule) Process(_ context.Context, pctx *pipeline.Context) pipeline.Result {
	op := pctx.Op.(useroperation.UserOperation)
	result := riskanalysis.Analyze(op, m.cfg)
	pctx.Metrics["risk_score"] = float64(result.Risk)
	if result.Decision == riskanalysis.DecisionBlock || result.Risk > m.maxRisk {
		return pipeline.TerminateErr(NewGatewayError(KindRejected, "contract risk too high", fmt.Errorf("risk=%d", result.Risk)))
	}
	return pipeline.Continue()
}

// policyModule runs §4.K's hot-reloadable ruleset evaluation.
type policyModule struct {
	baseModule
	manager *policy.Manager
}

func newPolicyModule(manager *policy.Manager) *policyModule {
	return &policyModule{baseModule: baseModule{name: "policy", priority: 50, enabled: true}, manager: manager}
}

func (m *policyModule) Process(_ context.Context, pctx *pipeline.Context) pipeline.Result {
	op := pctx.Op.(useroperation.UserOperation)
	gasLimit := op.CallGasLimit().Uint64() + op.VerificationGasLimit().Uint64() + op.PreVerificationGas().Uint64()

	decision := m.manager.Evaluate(op.Sender().Hex(), gasLimit, time.Now())
	pctx.Scratch["policy_decision"] = decision
	if decision.Action == policy.ActionDeny {
		return pipeline.TerminateErr(NewGatewayError(KindRejected, "denied by policy", fmt.Errorf("rule=%s", decision.MatchedRule)))
	}
	return pipeline.Continue()
}

// submitModule is the terminal module: it hands the op to the pool and
// produces the final eth_sendUserOperation response (the op hash).
type submitModule struct {
	baseModule
	pool    pool.Pool
	chainID *big.Int
}

func newSubmitModule(p pool.Pool, chainID *big.Int) *submitModule {
	return &submitModule{baseModule: baseModule{name: "submit", priority: 1000, enabled: true}, pool: p, chainID: chainID}
}

func (m *submitModule) Process(ctx context.Context, pctx *pipeline.Context) pipeline.Result {
	op := pctx.Op.(useroperation.UserOperation)
	entryPoint := pctx.Scratch[scratchEntryPoint].(common.Address)

	hash := op.Hash(entryPoint, m.chainID)
	raw, _ := pctx.Scratch[scratchRawOp].([]byte)

	err := m.pool.Submit(ctx, pool.Submission{
		Hash:       hash,
		RawOp:      raw,
		EntryPoint: entryPoint,
		Version:    string(op.Version()),
	})
	if err != nil {
		return pipeline.TerminateErr(NewGatewayError(KindInternal, "pool submission failed", err))
	}
	return pipeline.Terminate(hash)
}
