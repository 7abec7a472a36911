package useroperation

// calldataGasCost applies the standard EVM calldata pricing: 4 gas per zero
// byte, 16 gas per non-zero byte (EIP-2028).
func calldataGasCost(data []byte) uint64 {
	var cost uint64
	for _, b := range data {
		if b == 0 {
			cost += 4
		} else {
			cost += 16
		}
	}
	return cost
}

// calldataTokens is the EIP-7623 token count underlying the floor price:
// zero bytes count as 1 token, non-zero bytes as 4.
func calldataTokens(n int) uint64 {
	// n here is a total byte count without zero/non-zero discrimination
	// (call sites pass aggregate lengths); treat conservatively as all
	// non-zero, the worst case, since the floor is meant to be a lower
	// bound regardless of actual byte content.
	return uint64(n) * 4
}

// calldataFloorGasLimit returns the EIP-7623 calldata floor: a UserOp whose
// intrinsic gas would otherwise fall below this floor still pays it.
func calldataFloorGasLimit(totalCalldataBytes int) uint64 {
	const baseTxGas = 21000
	return baseTxGas + 10*calldataTokens(totalCalldataBytes)
}
