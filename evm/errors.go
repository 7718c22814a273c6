package evm

import (
	"errors"
	"fmt"
)

// EIP-1193 provider codes and the JSON-RPC internal error code.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
	CodeInternal          = -32603
)

var (
	ErrNoContractCode = errors.New("no contract code at address")
	ErrTxReverted     = errors.New("transaction reverted")
	ErrNoNodes        = errors.New("no rpc nodes configured")
)

// ProviderError is a wallet side failure carrying a provider defined code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode matches the go-ethereum rpc.Error interface.
func (e *ProviderError) ErrorCode() int {
	return e.Code
}
