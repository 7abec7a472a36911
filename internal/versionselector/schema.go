package versionselector

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema is the minimal JSON-Schema every wire-format UserOperation
// payload must satisfy before structural version detection even looks at
// it: a JSON object carrying a sender, nonce, callData, and signature, plus
// a gas-fee representation in either of the two shapes the three versions
// use — v0.6's unpacked maxFeePerGas/maxPriorityFeePerGas pair, or the
// v0.7/v0.8 PackedUserOperation's single gasFees word. This is a coarse
// shape gate, not a full per-version schema; per-version field requirements
// are still enforced by DecodeAny, matching the teacher's use of
// gojsonschema as an upfront shape check ahead of typed decoding rather
// than as a replacement for it.
const envelopeSchema = `{
	"type": "object",
	"required": ["sender", "nonce", "callData", "signature"],
	"properties": {
		"sender": {"type": "string"},
		"nonce": {"type": "string"},
		"callData": {"type": "string"},
		"signature": {"type": "string"},
		"maxFeePerGas": {"type": "string"},
		"maxPriorityFeePerGas": {"type": "string"},
		"gasFees": {"type": "string"}
	},
	"anyOf": [
		{"required": ["maxFeePerGas", "maxPriorityFeePerGas"]},
		{"required": ["gasFees"]}
	]
}`

var schemaLoader = gojsonschema.NewStringLoader(envelopeSchema)

// ValidateEnvelope checks data against the common UserOperation envelope
// shape, rejecting malformed or non-UserOperation payloads before the more
// expensive structural-detection and typed-decode steps run.
func ValidateEnvelope(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("versionselector: schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, msgs)
	}
	return nil
}
