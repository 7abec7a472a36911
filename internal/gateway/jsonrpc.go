package gateway

import "encoding/json"

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope; exactly one of Result
// or Error is populated.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func successResponse(id json.RawMessage, result interface{}) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, err error) rpcResponse {
	gwErr, ok := err.(*GatewayError)
	if !ok {
		gwErr = NewGatewayError(KindInternal, err.Error(), nil)
	}
	return rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &rpcError{
			Code:    jsonRPCCode(gwErr.Kind),
			Message: gwErr.Message,
			Data:    gwErr.Data,
		},
	}
}

// rpcMethod is the signature every dispatched method handler implements:
// raw params in, any JSON-marshalable result or a *GatewayError out.
type rpcMethod func(ctx *dispatchContext, params json.RawMessage) (interface{}, error)
