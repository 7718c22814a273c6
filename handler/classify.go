package handler

import (
	"errors"
	"strings"

	"github.com/kardiachain/crowdfund-backend/types"
)

// Provider codes understood by the classifier.
const (
	codeUserRejected = 4001
	codeInternal     = -32603
)

const (
	msgCancelled         = "Transaction was cancelled by user."
	msgGasFailure        = "Transaction failed. You may not have enough ETH for gas fees."
	msgInsufficientFunds = "Insufficient funds for this donation and gas fees."
	msgUnknown           = "Transaction failed. Please try again or check your wallet connection."
	msgContractLoading   = "Contract is still loading. Please wait a moment and try again."
)

type codedError interface {
	ErrorCode() int
}

// Classify maps any wallet or ledger failure to a TxError. It is the only
// place that knows provider error codes.
func Classify(err error) *types.TxError {
	return classify(err, msgUnknown)
}

func classify(err error, unknown string) *types.TxError {
	if err == nil {
		return nil
	}
	var txErr *types.TxError
	if errors.As(err, &txErr) {
		return txErr
	}
	var coded codedError
	if errors.As(err, &coded) {
		switch coded.ErrorCode() {
		case codeUserRejected:
			return types.NewTxError(types.KindWalletRejection, msgCancelled, err)
		case codeInternal:
			return types.NewTxError(types.KindInsufficientFunds, msgGasFailure, err)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return types.NewTxError(types.KindInsufficientFunds, msgInsufficientFunds, err)
	}
	switch {
	case errors.Is(err, types.ErrContractLoading):
		return types.NewTxError(types.KindContractUnavailable, msgContractLoading, err)
	case errors.Is(err, types.ErrContractInit):
		return types.NewTxError(types.KindContractUnavailable, "Contract error: "+err.Error(), err)
	}
	return types.NewTxError(types.KindUnknownTransaction, unknown, err)
}
