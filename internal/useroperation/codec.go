package useroperation

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// wireV06 is the JSON wire shape for a v0.6 UserOperation, field names
// matching the convention used by bundler JSON-RPC APIs.
type wireV06 struct {
	Sender               string `json:"sender"`
	Nonce                string `json:"nonce"`
	InitCode             string `json:"initCode"`
	CallData             string `json:"callData"`
	CallGasLimit         string `json:"callGasLimit"`
	VerificationGasLimit string `json:"verificationGasLimit"`
	PreVerificationGas   string `json:"preVerificationGas"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	PaymasterAndData     string `json:"paymasterAndData"`
	Signature            string `json:"signature"`
}

// wireV07 is the JSON wire shape shared by v0.7 and v0.8 (the latter adds
// an optional authorization tuple). Gas fields are carried packed, as the
// PackedUserOperation ABI and the bundler JSON-RPC wire format represent
// them: accountGasLimits packs verificationGasLimit||callGasLimit and
// gasFees packs maxPriorityFeePerGas||maxFeePerGas, each a single bytes32
// hex string rather than two separate fields.
type wireV07 struct {
	Sender                        string             `json:"sender"`
	Nonce                         string             `json:"nonce"`
	Factory                       string             `json:"factory,omitempty"`
	FactoryData                   string             `json:"factoryData,omitempty"`
	CallData                      string             `json:"callData"`
	AccountGasLimits              string             `json:"accountGasLimits"`
	PreVerificationGas            string             `json:"preVerificationGas"`
	GasFees                       string             `json:"gasFees"`
	Paymaster                     string             `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit string             `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       string             `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 string             `json:"paymasterData,omitempty"`
	Signature                     string             `json:"signature"`
	Authorization                 *wireAuthorization `json:"authorization,omitempty"`
}

type wireAuthorization struct {
	ChainID string `json:"chainId"`
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
	YParity uint8  `json:"yParity"`
	R       string `json:"r"`
	S       string `json:"s"`
}

// MarshalJSON encodes a v0.6 op in its wire shape.
func (op *V06Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireV06{
		Sender:               op.sender.Hex(),
		Nonce:                bigIntToHex(op.nonce),
		InitCode:             bytesToHex(op.initCode),
		CallData:             bytesToHex(op.callData),
		CallGasLimit:         bigIntToHex(op.callGasLimit),
		VerificationGasLimit: bigIntToHex(op.verificationGasLimit),
		PreVerificationGas:   bigIntToHex(op.preVerificationGas),
		MaxFeePerGas:         bigIntToHex(op.maxFeePerGas),
		MaxPriorityFeePerGas: bigIntToHex(op.maxPriorityFeePerGas),
		PaymasterAndData:     bytesToHex(op.paymasterAndData),
		Signature:            bytesToHex(op.signature),
	})
}

// UnmarshalJSON decodes a v0.6 op from its wire shape.
func (op *V06Op) UnmarshalJSON(data []byte) error {
	var w wireV06
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	op.sender = common.HexToAddress(w.Sender)
	op.nonce = hexToBigInt(w.Nonce)
	op.initCode = hexToBytes(w.InitCode)
	op.callData = hexToBytes(w.CallData)
	op.callGasLimit = hexToBigInt(w.CallGasLimit)
	op.verificationGasLimit = hexToBigInt(w.VerificationGasLimit)
	op.preVerificationGas = hexToBigInt(w.PreVerificationGas)
	op.maxFeePerGas = hexToBigInt(w.MaxFeePerGas)
	op.maxPriorityFeePerGas = hexToBigInt(w.MaxPriorityFeePerGas)
	op.paymasterAndData = hexToBytes(w.PaymasterAndData)
	op.signature = hexToBytes(w.Signature)
	return nil
}

func (op *V07Op) toWire() wireV07 {
	w := wireV07{
		Sender:             op.sender.Hex(),
		Nonce:              bigIntToHex(op.nonce),
		CallData:           bytesToHex(op.callData),
		AccountGasLimits:   bytes32ToHex(op.accountGasLimits),
		PreVerificationGas: bigIntToHex(op.preVerificationGas),
		GasFees:            bytes32ToHex(op.gasFees),
		Signature:          bytesToHex(op.signature),
	}
	if op.hasFactory {
		w.Factory = op.factory.Hex()
		w.FactoryData = bytesToHex(op.factoryData)
	}
	if op.hasPaymaster {
		w.Paymaster = op.paymaster.Hex()
		w.PaymasterVerificationGasLimit = bigIntToHex(op.paymasterVerificationGasLimit)
		w.PaymasterPostOpGasLimit = bigIntToHex(op.paymasterPostOpGasLimit)
		w.PaymasterData = bytesToHex(op.paymasterData)
	}
	return w
}

func (op *V07Op) fromWire(w wireV07) {
	op.sender = common.HexToAddress(w.Sender)
	op.nonce = hexToBigInt(w.Nonce)
	op.callData = hexToBytes(w.CallData)
	op.accountGasLimits = hexToBytes32(w.AccountGasLimits)
	op.preVerificationGas = hexToBigInt(w.PreVerificationGas)
	op.gasFees = hexToBytes32(w.GasFees)
	op.signature = hexToBytes(w.Signature)
	if w.Factory != "" {
		op.factory = common.HexToAddress(w.Factory)
		op.factoryData = hexToBytes(w.FactoryData)
		op.hasFactory = true
	}
	if w.Paymaster != "" {
		op.paymaster = common.HexToAddress(w.Paymaster)
		op.paymasterVerificationGasLimit = hexToBigInt(w.PaymasterVerificationGasLimit)
		op.paymasterPostOpGasLimit = hexToBigInt(w.PaymasterPostOpGasLimit)
		op.paymasterData = hexToBytes(w.PaymasterData)
		op.hasPaymaster = true
	}
}

// MarshalJSON encodes a v0.7 op in its wire shape.
func (op *V07Op) MarshalJSON() ([]byte, error) { return json.Marshal(op.toWire()) }

// UnmarshalJSON decodes a v0.7 op from its wire shape.
func (op *V07Op) UnmarshalJSON(data []byte) error {
	var w wireV07
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	op.fromWire(w)
	return nil
}

// MarshalJSON encodes a v0.8 op: the v0.7 wire shape plus an authorization
// tuple when present.
func (op *V08Op) MarshalJSON() ([]byte, error) {
	w := op.V07Op.toWire()
	if op.hasAuthorization {
		a := op.authorization
		w.Authorization = &wireAuthorization{
			ChainID: bigIntToHex(a.ChainID),
			Address: a.Address.Hex(),
			Nonce:   a.Nonce,
			YParity: a.YParity,
			R:       bigIntToHex(a.R),
			S:       bigIntToHex(a.S),
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a v0.8 op from its wire shape.
func (op *V08Op) UnmarshalJSON(data []byte) error {
	var w wireV07
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	op.V07Op.fromWire(w)
	if w.Authorization != nil {
		a := w.Authorization
		op.authorization = Authorization{
			ChainID: hexToBigInt(a.ChainID),
			Address: common.HexToAddress(a.Address),
			Nonce:   a.Nonce,
			YParity: a.YParity,
			R:       hexToBigInt(a.R),
			S:       hexToBigInt(a.S),
		}
		op.hasAuthorization = true
	}
	return nil
}

// DetectVersion inspects raw wire JSON structurally, without relying on an
// explicit version tag, in the same order the original gateway's
// version_selector does: factory+factoryData identifies v0.6; failing
// that, the packed accountGasLimits+gasFees pair identifies v0.7 (or v0.8
// when an authorization tuple is also present); failing that, the legacy
// initCode+paymasterAndData blobs identify v0.6.
func DetectVersion(data []byte) (Version, error) {
	var probe struct {
		InitCode         *string            `json:"initCode"`
		PaymasterAndData *string            `json:"paymasterAndData"`
		Factory          *string            `json:"factory"`
		FactoryData      *string            `json:"factoryData"`
		AccountGasLimits *string            `json:"accountGasLimits"`
		GasFees          *string            `json:"gasFees"`
		Authorization    *wireAuthorization `json:"authorization"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", ErrMalformedWireFormat
	}
	if probe.Factory != nil && probe.FactoryData != nil {
		return V06, nil
	}
	if probe.AccountGasLimits != nil && probe.GasFees != nil {
		if probe.Authorization != nil {
			return V08, nil
		}
		return V07, nil
	}
	if probe.InitCode != nil && probe.PaymasterAndData != nil {
		return V06, nil
	}
	return "", ErrMalformedWireFormat
}

// DecodeAny decodes raw wire JSON into the appropriate variant. If
// explicitVersion is non-empty it's trusted outright (callers are expected
// to have already validated it against DetectVersion where agreement
// matters); otherwise the version is structurally detected.
func DecodeAny(data []byte, explicitVersion Version) (UserOperation, error) {
	version := explicitVersion
	if version == "" {
		detected, err := DetectVersion(data)
		if err != nil {
			return nil, err
		}
		version = detected
	}
	switch version {
	case V06:
		op := &V06Op{}
		if err := op.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return op, nil
	case V07:
		op := &V07Op{}
		if err := op.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return op, nil
	case V08:
		op := &V08Op{}
		if err := op.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return op, nil
	default:
		return nil, ErrUnsupportedVersion
	}
}
