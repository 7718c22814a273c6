// Package types
package types

import (
	"errors"
	"fmt"
)

var (
	ErrBusy              = errors.New("a submission is already in progress")
	ErrNotConnected      = errors.New("wallet not connected")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrContractLoading   = errors.New("contract is still loading")
	ErrContractInit      = errors.New("contract failed to initialize")
	ErrImageUnreachable  = errors.New("image url is not a retrievable image")
	ErrSwitchDeclined    = errors.New("network switch declined")
	ErrUnsupportedChain  = errors.New("chain not configured")
	ErrDraftMalformed    = errors.New("malformed draft")
	ErrDraftTooLarge     = errors.New("draft exceeds size limit")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCampaignID = errors.New("invalid campaign id")
	ErrSessionNotFound   = errors.New("draft session not found")
)

// ErrorKind is the abstract class of a failed workflow attempt. Nothing outside
// the classifier depends on provider specific codes.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindNetworkMismatch     ErrorKind = "network_mismatch"
	KindWalletConnection    ErrorKind = "wallet_connection"
	KindWalletRejection     ErrorKind = "wallet_rejection"
	KindInsufficientFunds   ErrorKind = "insufficient_funds"
	KindContractUnavailable ErrorKind = "contract_unavailable"
	KindResourceCheck       ErrorKind = "resource_check"
	KindUnknownTransaction  ErrorKind = "unknown_transaction"
	KindExpired             ErrorKind = "expired"
	KindSelfDonation        ErrorKind = "self_donation"
	KindNotConnected        ErrorKind = "not_connected"
	KindBusy                ErrorKind = "busy"
)

// TxError is the only error shape surfaced to the display layer.
type TxError struct {
	Kind    ErrorKind   `json:"kind"`
	Message string      `json:"message"`
	Fields  FieldErrors `json:"fields,omitempty"`
	Cause   error       `json:"-"`
}

func (e *TxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TxError) Unwrap() error {
	return e.Cause
}

func NewTxError(kind ErrorKind, msg string, cause error) *TxError {
	return &TxError{Kind: kind, Message: msg, Cause: cause}
}

// ValidationError wraps field errors into a TxError.
func ValidationError(fields FieldErrors) *TxError {
	return &TxError{
		Kind:    KindValidation,
		Message: "Please fix the form errors before submitting",
		Fields:  fields,
	}
}

// IsKind reports whether err is a TxError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.Kind == kind
	}
	return false
}
