package gateway

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/aastar-community/relay-gateway/internal/pipeline"
	"github.com/aastar-community/relay-gateway/internal/verification"
)

func (s *Server) buildMethodTable() map[string]rpcMethod {
	return map[string]rpcMethod{
		"eth_chainId":                  s.methodChainID,
		"eth_supportedEntryPoints":     s.methodSupportedEntryPoints,
		"eth_estimateUserOperationGas": s.methodEstimateGas,
		"eth_sendUserOperation":        s.methodSendUserOperation,
		"eth_getUserOperationByHash":   s.methodGetUserOperationByHash,
		"eth_getUserOperationReceipt":  s.methodGetUserOperationReceipt,
		"pm_sponsorUserOperation":      s.methodSponsorUserOperation,
	}
}

// handleJSONRPC is the single POST / handler dispatching every JSON-RPC
// method, attaching the client IP and a generated request id to the
// processing context before handing off, per §4.J.
func (s *Server) handleJSONRPC(c *gin.Context) {
	var req rpcRequest
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, NewGatewayError(KindParseError, "could not read request body", err)))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, NewGatewayError(KindParseError, "invalid JSON", err)))
		return
	}

	method, ok := s.methods[req.Method]
	if !ok {
		c.JSON(http.StatusOK, errorResponse(req.ID, NewGatewayError(KindMethodNotFound, "unknown method: "+req.Method, nil)))
		return
	}

	requestIDVal, _ := c.Get("request_id")
	requestID, _ := requestIDVal.(string)
	dctx := &dispatchContext{
		ctx:       c.Request.Context(),
		clientIP:  c.ClientIP(),
		requestID: requestID,
		server:    s,
	}

	result, err := method(dctx, req.Params)
	if err != nil {
		c.JSON(http.StatusOK, errorResponse(req.ID, err))
		return
	}
	c.JSON(http.StatusOK, successResponse(req.ID, result))
}

func (s *Server) methodChainID(_ *dispatchContext, _ json.RawMessage) (interface{}, error) {
	return hexutilUint64(uint64(s.cfg.ChainID)), nil
}

func (s *Server) methodSupportedEntryPoints(_ *dispatchContext, _ json.RawMessage) (interface{}, error) {
	entries := []string{s.cfg.EntryPointV06, s.cfg.EntryPointV07}
	if s.cfg.EntryPointV08 != "" {
		entries = append(entries, s.cfg.EntryPointV08)
	}
	return entries, nil
}

// decodeArrayParams unmarshals a [userOp, entryPoint, ...] positional
// params array, the shape every bundler-style JSON-RPC method in §6 uses.
func decodeArrayParams(params json.RawMessage) (json.RawMessage, string, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(params, &arr); err != nil {
		return nil, "", err
	}
	if len(arr) < 1 {
		return nil, "", errNotEnoughParams
	}
	var entryPoint string
	if len(arr) >= 2 {
		_ = json.Unmarshal(arr[1], &entryPoint)
	}
	return arr[0], entryPoint, nil
}

var errNotEnoughParams = jsonRPCParamError("expected at least [userOp] in params")

type jsonRPCParamError string

func (e jsonRPCParamError) Error() string { return string(e) }

func (s *Server) methodEstimateGas(dctx *dispatchContext, params json.RawMessage) (interface{}, error) {
	opBytes, _, err := decodeArrayParams(params)
	if err != nil {
		return nil, NewGatewayError(KindInvalidParams, "malformed params", err)
	}
	op, _, err := s.deps.Selector.Decode(opBytes, "")
	if err != nil {
		return nil, NewGatewayError(KindInvalidParams, "malformed user operation", err)
	}
	estimate, err := s.deps.Simulator.EstimateGas(dctx.ctx, op)
	if err != nil {
		return nil, NewGatewayError(KindInternal, "gas estimation failed", err)
	}
	return estimate, nil
}

func (s *Server) methodSendUserOperation(dctx *dispatchContext, params json.RawMessage) (interface{}, error) {
	opBytes, _, err := decodeArrayParams(params)
	if err != nil {
		return nil, NewGatewayError(KindInvalidParams, "malformed params", err)
	}

	pctx := pipeline.NewContext(dctx.requestID, dctx.clientIP, nil)
	pctx.Scratch[scratchRawOp] = []byte(opBytes)

	res := s.pipeline.Run(dctx.ctx, pctx)
	if hash, ok := res.Response(); ok {
		return hash.(common.Hash).Hex(), nil
	}
	if err, ok := res.Err(); ok {
		return nil, err
	}
	return nil, NewGatewayError(KindInternal, "pipeline produced no result", nil)
}

func (s *Server) methodGetUserOperationByHash(dctx *dispatchContext, params json.RawMessage) (interface{}, error) {
	var arr []string
	if err := json.Unmarshal(params, &arr); err != nil || len(arr) < 1 {
		return nil, NewGatewayError(KindInvalidParams, "expected [hash]", err)
	}
	sub, ok := s.deps.Pool.GetByHash(dctx.ctx, common.HexToHash(arr[0]))
	if !ok {
		return nil, nil
	}
	return sub, nil
}

func (s *Server) methodGetUserOperationReceipt(dctx *dispatchContext, params json.RawMessage) (interface{}, error) {
	var arr []string
	if err := json.Unmarshal(params, &arr); err != nil || len(arr) < 1 {
		return nil, NewGatewayError(KindInvalidParams, "expected [hash]", err)
	}
	receipt, ok := s.deps.Pool.GetReceipt(dctx.ctx, common.HexToHash(arr[0]))
	if !ok {
		return nil, nil
	}
	return receipt, nil
}

// sponsorParams is pm_sponsorUserOperation's request shape: the raw op
// plus the account/signature metadata the dual-signature flow needs.
type sponsorParams struct {
	UserOp        json.RawMessage `json:"userOp"`
	EntryPoint    string          `json:"entryPoint"`
	AccountID     string          `json:"accountId"`
	UserSignature string          `json:"userSignature"`
	UserPublicKey string          `json:"userPublicKey"`
}

func (s *Server) methodSponsorUserOperation(dctx *dispatchContext, params json.RawMessage) (interface{}, error) {
	var arr []json.RawMessage
	var sp sponsorParams
	if err := json.Unmarshal(params, &arr); err == nil && len(arr) >= 1 {
		sp.UserOp = arr[0]
		if len(arr) >= 2 {
			_ = json.Unmarshal(arr[1], &sp.EntryPoint)
		}
	} else if err := json.Unmarshal(params, &sp); err != nil {
		return nil, NewGatewayError(KindInvalidParams, "malformed sponsor params", err)
	}

	resp, err := s.orch.Run(dctx.ctx, verification.Context{
		RequestID:     dctx.requestID,
		RawOp:         sp.UserOp,
		EntryPoint:    sp.EntryPoint,
		AccountID:     sp.AccountID,
		UserSignature: sp.UserSignature,
		UserPublicKey: sp.UserPublicKey,
		ClientIP:      dctx.clientIP,
	})
	if err != nil {
		return nil, NewGatewayError(KindRejected, "sponsorship failed", err)
	}
	return resp, nil
}

// hexutilUint64 renders n as a 0x-prefixed hex string, the wire shape
// eth_chainId and friends use.
func hexutilUint64(n uint64) string {
	return "0x" + new(big.Int).SetUint64(n).Text(16)
}
