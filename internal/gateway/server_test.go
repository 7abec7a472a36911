package gateway

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aastar-community/relay-gateway/internal/authorization"
	"github.com/aastar-community/relay-gateway/internal/blsprotection"
	"github.com/aastar-community/relay-gateway/internal/config"
	"github.com/aastar-community/relay-gateway/internal/kms"
	"github.com/aastar-community/relay-gateway/internal/pool"
	"github.com/aastar-community/relay-gateway/internal/provider"
	"github.com/aastar-community/relay-gateway/internal/policy"
	"github.com/aastar-community/relay-gateway/internal/riskanalysis"
	"github.com/aastar-community/relay-gateway/internal/simulator"
	"github.com/aastar-community/relay-gateway/internal/useroperation"
	"github.com/aastar-community/relay-gateway/internal/validation"
	"github.com/aastar-community/relay-gateway/internal/verification"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:                     8080,
		Environment:              "test",
		ChainID:                  1,
		EntryPointV06:            useroperation.EntryPointV06Address,
		EntryPointV07:            useroperation.EntryPointV07Address,
		RateLimitMaxOpsPerSender: 0,
		PipelineDefaultTimeout:   5 * time.Second,
	}

	mgr := kms.NewManager()
	mgr.RegisterProvider(kms.KeyTypeSoftware, kms.NewSoftwareProvider())

	deps := Dependencies{
		Config:           cfg,
		Logger:           zap.NewNop(),
		Selector:         versionselector.NewSelector(),
		ValidationLimits: validation.DefaultLimits(),
		AuthConfig:       authorization.Config{},
		RiskConfig:       riskanalysis.NewDefaultConfig(),
		BLSProtector:     blsprotection.NewProtector(blsprotection.DefaultConfig()),
		PolicyManager:    policy.NewManager("", 0, 0),
		Pool:             pool.NewInMemoryPool(),
		Simulator:        simulator.NewFixedSimulator(),
		Provider:         provider.NewInMemoryProvider(big.NewInt(1)),
		KMSManager:       mgr,
		RulesOracle:      verification.NewInMemoryRulesOracle(),
	}

	return New(deps)
}

func sampleSignedOpBytes(t *testing.T, sender common.Address) []byte {
	t.Helper()
	sig := make([]byte, 65)
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	sig[64] = 27

	op := useroperation.NewBuilderV06(sender, big.NewInt(1)).
		CallData([]byte{0x01, 0x02, 0x03}).
		CallGasLimit(big.NewInt(100000)).
		VerificationGasLimit(big.NewInt(80000)).
		PreVerificationGas(big.NewInt(21000)).
		MaxFeePerGas(big.NewInt(2000000000)).
		MaxPriorityFeePerGas(big.NewInt(1000000000)).
		Signature(sig).
		Build()

	data, err := op.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func doRPC(t *testing.T, s *Server, method string, params interface{}) rpcResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  json.RawMessage(paramsJSON),
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp rpcResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (body=%s)", err, rec.Body.String())
	}
	return resp
}

func TestChainIDReturnsConfiguredChain(t *testing.T) {
	s := newTestServer(t)
	resp := doRPC(t, s, "eth_chainId", []interface{}{})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result != "0x1" {
		t.Fatalf("expected chain id 0x1, got %v", resp.Result)
	}
}

func TestSupportedEntryPointsListsConfiguredAddresses(t *testing.T) {
	s := newTestServer(t)
	resp := doRPC(t, s, "eth_supportedEntryPoints", []interface{}{})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := doRPC(t, s, "totally_bogus_method", []interface{}{})
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
}

func TestSendUserOperationSubmitsToPool(t *testing.T) {
	s := newTestServer(t)
	sender := common.HexToAddress("0x00000000000000000000000000000000001234")
	opBytes := sampleSignedOpBytes(t, sender)

	resp := doRPC(t, s, "eth_sendUserOperation", []interface{}{json.RawMessage(opBytes)})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	hash, ok := resp.Result.(string)
	if !ok || hash == "" {
		t.Fatalf("expected a non-empty hash string, got %v", resp.Result)
	}
}

func TestEstimateGasReturnsFixedEstimate(t *testing.T) {
	s := newTestServer(t)
	sender := common.HexToAddress("0x00000000000000000000000000000000001234")
	opBytes := sampleSignedOpBytes(t, sender)

	resp := doRPC(t, s, "eth_estimateUserOperationGas", []interface{}{json.RawMessage(opBytes)})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestHealthEndpointReportsHealthy(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBLSValidateRejectsZeroMessageHash(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(map[string]interface{}{
		"aggregator":  common.HexToAddress("0x1111111111111111111111111111111111111111").Hex(),
		"messageHash": common.Hash{}.Hex(),
		"signatures":  []string{},
	})
	req := httptest.NewRequest(http.MethodPost, "/bls/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["valid"] != false {
		t.Fatalf("expected valid=false for a zero message hash, got %v", out)
	}
}

func TestBLSBlacklistThenTrustRoundTrip(t *testing.T) {
	s := newTestServer(t)
	aggregator := common.HexToAddress("0x2222222222222222222222222222222222222222")

	blBody, _ := json.Marshal(map[string]interface{}{"aggregator": aggregator.Hex(), "reason": "manual block"})
	req := httptest.NewRequest(http.MethodPost, "/bls/blacklist", bytes.NewReader(blBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("blacklist: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/bls/status?aggregator="+aggregator.Hex(), nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var status map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &status)
	if status["blacklisted"] != true {
		t.Fatalf("expected blacklisted=true, got %v", status)
	}

	trustBody, _ := json.Marshal(map[string]interface{}{"aggregator": aggregator.Hex()})
	req = httptest.NewRequest(http.MethodPost, "/bls/trusted", bytes.NewReader(trustBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("trust: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/bls/status?aggregator="+aggregator.Hex(), nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	_ = json.Unmarshal(rec.Body.Bytes(), &status)
	if status["blacklisted"] != false {
		t.Fatalf("expected blacklisted=false after trust, got %v", status)
	}
}
