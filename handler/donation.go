package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/utils"
)

const (
	msgDonationExpired  = "This campaign has expired and no longer accepts donations."
	msgDonationConnect  = "Please connect your wallet to donate."
	msgDonationOwn      = "You cannot donate to your own campaign."
	msgDonationFailed   = "Donation failed. Please try again or check your wallet connection."
	msgDonationLoad     = "Failed to load campaign details. Please try again."
	msgDonationNotFound = "Campaign not found"
	msgDonated          = "Successfully donated %s ETH! Thank you for your support."
)

type IDonation interface {
	Donate(ctx context.Context, campaignID uint64, amount string) types.DonationResult
	Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error)
	RefreshAllDonations(ctx context.Context) (map[uint64][]*types.Donation, error)
}

// Donate runs the donation workflow for the amount typed by the user.
// Preconditions are checked in order and the first failing one is reported.
func (h *handler) Donate(ctx context.Context, campaignID uint64, amount string) types.DonationResult {
	lgr := h.logger.With(zap.String("method", "Donate"), zap.Uint64("campaignId", campaignID))
	failed := func(txErr *types.TxError) types.DonationResult {
		return types.DonationResult{Amount: amount, Err: txErr}
	}

	if errs := h.validator.ValidateDonation(amount); !errs.Valid() {
		txErr := types.NewTxError(types.KindValidation, errs[types.FieldAmount], types.ErrInvalidAmount)
		txErr.Fields = errs
		return failed(txErr)
	}

	campaign, err := h.campaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, types.ErrCampaignNotFound) {
			return failed(types.NewTxError(types.KindValidation, msgDonationNotFound, err))
		}
		return failed(types.NewTxError(types.KindUnknownTransaction, msgDonationLoad, err))
	}

	if isExpired(campaign, h.now()) {
		return failed(types.NewTxError(types.KindExpired, msgDonationExpired, nil))
	}

	address, err := h.wallet.Address(ctx)
	if err != nil || address == "" {
		return failed(types.NewTxError(types.KindNotConnected, msgDonationConnect, types.ErrNotConnected))
	}

	if utils.SameAddress(address, campaign.Owner) {
		return failed(types.NewTxError(types.KindSelfDonation, msgDonationOwn, nil))
	}

	wei, err := utils.EtherToWei(amount)
	if err != nil {
		return failed(types.NewTxError(types.KindValidation, err.Error(), types.ErrInvalidAmount))
	}

	// A submitted transaction is never abandoned with the request.
	submitCtx := context.WithoutCancel(ctx)
	if err := h.ledger.Donate(submitCtx, campaignID, wei); err != nil {
		lgr.Warn("Donation error", zap.Error(err))
		return failed(classify(err, msgDonationFailed))
	}
	lgr.Info("Donated", zap.String("amount", amount), zap.String("donator", address))

	result := types.DonationResult{
		Succeeded: true,
		Amount:    "",
		Message:   fmt.Sprintf(msgDonated, amount),
		Redirect:  types.NewRedirect(HomePath, h.donationDelay),
	}
	donations, err := h.donors.Refresh(submitCtx, campaignID)
	if err != nil {
		lgr.Warn("cannot refresh donators", zap.Error(err))
	}
	result.Donations = donations
	if _, err := h.RefreshCampaigns(submitCtx); err != nil {
		lgr.Warn("cannot refresh campaigns", zap.Error(err))
	}
	return result
}

// Donations refreshes the donor list of a campaign.
func (h *handler) Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error) {
	if _, err := h.campaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return h.donors.Refresh(ctx, campaignID)
}

// RefreshAllDonations reloads the donors of every known campaign.
func (h *handler) RefreshAllDonations(ctx context.Context) (map[uint64][]*types.Donation, error) {
	campaigns, err := h.RefreshCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	return h.donors.RefreshAll(ctx, ids, h.poolSize)
}
