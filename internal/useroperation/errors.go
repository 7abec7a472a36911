package useroperation

import "errors"

var (
	// ErrPriorityFeeExceedsMax is returned when max_priority_fee_per_gas >
	// max_fee_per_gas, violating the invariant all three variants share.
	ErrPriorityFeeExceedsMax = errors.New("useroperation: max_priority_fee_per_gas exceeds max_fee_per_gas")
	// ErrFactoryDataMissing is returned when a factory address is present
	// without accompanying factory data.
	ErrFactoryDataMissing = errors.New("useroperation: factory present without factory_data")
	// ErrUnsupportedVersion is returned by codec functions asked to decode
	// an unrecognized wire format.
	ErrUnsupportedVersion = errors.New("useroperation: unsupported version")
	// ErrMalformedWireFormat is returned when the raw JSON doesn't carry
	// enough of the expected fields to build any variant.
	ErrMalformedWireFormat = errors.New("useroperation: malformed wire format")
)
