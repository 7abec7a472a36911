// Package gateway implements the JSON-RPC Gateway Front-End (§4.J): method
// dispatch, a gin.Engine carrying the JSON-RPC endpoint alongside the REST
// BLS-management and health/metrics surfaces, request-scoped context
// construction, and response shaping.
package gateway

import "fmt"

// Kind names a class of gateway failure, each mapped to a JSON-RPC error
// code in jsonRPCCode.
type Kind string

const (
	KindParseError     Kind = "parse_error"
	KindInvalidRequest Kind = "invalid_request"
	KindMethodNotFound Kind = "method_not_found"
	KindInvalidParams  Kind = "invalid_params"
	KindInternal       Kind = "internal_error"
	KindRejected       Kind = "rejected"
)

// GatewayError is the single error shape every handler returns internally,
// following the teacher's VerifyError/SettleError pattern: a reason code,
// contextual data, and an optional wrapped underlying error.
type GatewayError struct {
	Kind    Kind
	Message string
	Data    map[string]any
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func NewGatewayError(kind Kind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}

// jsonRPCCode maps a Kind to its JSON-RPC 2.0 error code.
func jsonRPCCode(k Kind) int {
	switch k {
	case KindParseError:
		return -32700
	case KindInvalidRequest:
		return -32600
	case KindMethodNotFound:
		return -32601
	case KindInvalidParams:
		return -32602
	case KindRejected:
		return -32000
	default:
		return -32603
	}
}
