package versionselector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelopeAcceptsWellFormedPayload(t *testing.T) {
	data := []byte(`{
		"sender": "0x0000000000000000000000000000000000aaaa",
		"nonce": "0x1",
		"callData": "0x",
		"maxFeePerGas": "0x1",
		"maxPriorityFeePerGas": "0x1",
		"signature": "0x"
	}`)
	require.NoError(t, ValidateEnvelope(data))
}

func TestValidateEnvelopeRejectsMissingRequiredFields(t *testing.T) {
	err := ValidateEnvelope([]byte(`{"not":"a user op"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestValidateEnvelopeRejectsNonObjectPayload(t *testing.T) {
	require.Error(t, ValidateEnvelope([]byte(`[1,2,3]`)))
}
