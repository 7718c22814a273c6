package types

import (
	"time"
)

// CreationState is a step of the campaign creation state machine.
type CreationState string

const (
	StateIdle          CreationState = "idle"
	StateValidating    CreationState = "validating"
	StateNetworkCheck  CreationState = "network_check"
	StateWalletConnect CreationState = "wallet_connect"
	StateSubmitting    CreationState = "submitting"
	StateSucceeded     CreationState = "succeeded"
	StateFailed        CreationState = "failed"
)

// ProgressStep is the form progress indicator shown above the creation form.
type ProgressStep int

const (
	StepConnectWallet ProgressStep = iota
	StepFillDetails
	StepValidate
	StepCreateCampaign
)

var progressStepNames = [...]string{"Connect Wallet", "Fill Details", "Validate", "Create Campaign"}

func (s ProgressStep) String() string {
	if s < 0 || int(s) >= len(progressStepNames) {
		return "unknown"
	}
	return progressStepNames[s]
}

// Redirect tells the caller to navigate away once Delay has elapsed.
type Redirect struct {
	Path  string        `json:"path"`
	Delay time.Duration `json:"-"`
	After int64         `json:"afterMs"`
}

func NewRedirect(path string, delay time.Duration) *Redirect {
	return &Redirect{Path: path, Delay: delay, After: delay.Milliseconds()}
}

type CreationResult struct {
	State      CreationState `json:"state"`
	CampaignID uint64        `json:"campaignId,omitempty"`
	Err        *TxError      `json:"error,omitempty"`
	Redirect   *Redirect     `json:"redirect,omitempty"`
}

// DonationResult carries the amount input as it should be shown next: empty
// after a success, unchanged after a failure.
type DonationResult struct {
	Succeeded bool        `json:"succeeded"`
	Amount    string      `json:"amount"`
	Message   string      `json:"message,omitempty"`
	Err       *TxError    `json:"error,omitempty"`
	Donations []*Donation `json:"donations,omitempty"`
	Redirect  *Redirect   `json:"redirect,omitempty"`
}
