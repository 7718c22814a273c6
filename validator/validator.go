// Package validator checks campaign and donation input field by field.
package validator

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/utils"
)

const (
	DefaultMaxTarget = "1000"
	DefaultMinAmount = "0.001"

	MinDuration = 24 * time.Hour
	MaxDuration = 365 * 24 * time.Hour
)

const (
	msgNameRequired        = "Name is required"
	msgTitleRequired       = "Title is required"
	msgDescriptionRequired = "Description is required"
	msgTargetInvalid       = "Target must be a positive number"
	msgTargetTooHigh       = "Target amount seems unusually high (>%s ETH)"
	msgTargetTooSmall      = "Target amount too small (minimum %s ETH)"
	msgDeadlineRequired    = "Deadline is required"
	msgDeadlineInvalid     = "Deadline must be a valid date"
	msgDeadlineTooSoon     = "Campaign must run for at least 24 hours"
	msgDeadlineTooLate     = "Campaign duration cannot exceed 1 year"
	msgImageInvalid        = "Please provide a valid image URL"

	msgAmountRequired = "Please enter an amount"
	msgAmountInvalid  = "Please enter a valid positive number"
	msgAmountTooSmall = "Minimum donation is %s ETH"
	msgTooPrecise     = "Amount cannot have more than 18 decimal places"
)

// Policy holds the business limits applied to amounts.
type Policy struct {
	MaxTarget decimal.Decimal
	MinAmount decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		MaxTarget: decimal.RequireFromString(DefaultMaxTarget),
		MinAmount: decimal.RequireFromString(DefaultMinAmount),
	}
}

// Validator is safe for concurrent use; it holds no mutable state.
type Validator struct {
	policy Policy
	now    func() time.Time
}

func New(policy Policy, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{policy: policy, now: now}
}

// Validate returns every field error of a creation draft. An empty result
// means the draft can be submitted.
func (v *Validator) Validate(d types.CampaignDraft) types.FieldErrors {
	errs := types.FieldErrors{}

	if strings.TrimSpace(d.Name) == "" {
		errs[types.FieldName] = msgNameRequired
	}
	if strings.TrimSpace(d.Title) == "" {
		errs[types.FieldTitle] = msgTitleRequired
	}
	if strings.TrimSpace(d.Description) == "" {
		errs[types.FieldDescription] = msgDescriptionRequired
	}
	if msg := v.checkTarget(d.Target); msg != "" {
		errs[types.FieldTarget] = msg
	}
	if msg := v.checkDeadline(d.Deadline); msg != "" {
		errs[types.FieldDeadline] = msg
	}
	if msg := checkImage(d.Image); msg != "" {
		errs[types.FieldImage] = msg
	}
	return errs
}

// ValidateDonation applies the donation amount rule. Expiry and ownership are
// checked by the donation workflow.
func (v *Validator) ValidateDonation(amount string) types.FieldErrors {
	errs := types.FieldErrors{}
	if strings.TrimSpace(amount) == "" {
		errs[types.FieldAmount] = msgAmountRequired
		return errs
	}
	d, err := utils.ParseDecimal(amount)
	if errors.Is(err, utils.ErrTooManyDecimals) {
		errs[types.FieldAmount] = msgTooPrecise
		return errs
	}
	if err != nil || !d.IsPositive() {
		errs[types.FieldAmount] = msgAmountInvalid
		return errs
	}
	if d.LessThan(v.policy.MinAmount) {
		errs[types.FieldAmount] = fmt.Sprintf(msgAmountTooSmall, v.policy.MinAmount.String())
	}
	return errs
}

func (v *Validator) checkTarget(target string) string {
	d, err := utils.ParseDecimal(target)
	if errors.Is(err, utils.ErrTooManyDecimals) {
		return msgTooPrecise
	}
	if err != nil || !d.IsPositive() {
		return msgTargetInvalid
	}
	if d.GreaterThan(v.policy.MaxTarget) {
		return fmt.Sprintf(msgTargetTooHigh, v.policy.MaxTarget.String())
	}
	if d.LessThan(v.policy.MinAmount) {
		return fmt.Sprintf(msgTargetTooSmall, v.policy.MinAmount.String())
	}
	return ""
}

func (v *Validator) checkDeadline(deadline string) string {
	if strings.TrimSpace(deadline) == "" {
		return msgDeadlineRequired
	}
	t, err := utils.ParseDeadline(deadline)
	if err != nil {
		return msgDeadlineInvalid
	}
	now := v.now()
	if !t.After(now.Add(MinDuration)) {
		return msgDeadlineTooSoon
	}
	if t.After(now.Add(MaxDuration)) {
		return msgDeadlineTooLate
	}
	return ""
}

func checkImage(image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	u, err := url.Parse(image)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return msgImageInvalid
	}
	return ""
}
