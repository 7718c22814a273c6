package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/utils"
)

// CardEtherPlaces is the precision of amounts on campaign cards.
const CardEtherPlaces = 4

type ICampaign interface {
	Campaigns(ctx context.Context) ([]*types.CampaignView, error)
	Campaign(ctx context.Context, id uint64) (*types.CampaignView, error)
	RefreshCampaigns(ctx context.Context) ([]*types.Campaign, error)
}

// Campaigns serves the cached read model, reloading it from the ledger on a
// miss.
func (h *handler) Campaigns(ctx context.Context) ([]*types.CampaignView, error) {
	campaigns, err := h.campaigns(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()
	views := make([]*types.CampaignView, len(campaigns))
	for i, c := range campaigns {
		views[i] = NewCampaignView(c, now)
	}
	return views, nil
}

func (h *handler) Campaign(ctx context.Context, id uint64) (*types.CampaignView, error) {
	c, err := h.campaign(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewCampaignView(c, h.now())
	if h.db != nil {
		donations, err := h.db.Donations(ctx, id)
		if err != nil {
			h.logger.Debug("cannot read stored donations", zap.Uint64("id", id), zap.Error(err))
		}
		view.Donations = donations
	}
	return view, nil
}

func (h *handler) campaign(ctx context.Context, id uint64) (*types.Campaign, error) {
	campaigns, err := h.campaigns(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, types.ErrCampaignNotFound
}

func (h *handler) campaigns(ctx context.Context) ([]*types.Campaign, error) {
	lgr := h.logger.With(zap.String("method", "campaigns"))
	if h.cache != nil {
		campaigns, err := h.cache.Campaigns(ctx)
		if err == nil {
			return campaigns, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			lgr.Debug("cannot read cached campaigns", zap.Error(err))
		}
	}
	campaigns, err := h.RefreshCampaigns(ctx)
	if err == nil {
		return campaigns, nil
	}
	if h.db == nil {
		return nil, err
	}
	lgr.Warn("ledger unavailable, serving stored campaigns", zap.Error(err))
	return h.db.Campaigns(ctx)
}

// RefreshCampaigns re-reads every campaign from the ledger and publishes the
// result to the cache and the store.
func (h *handler) RefreshCampaigns(ctx context.Context) ([]*types.Campaign, error) {
	lgr := h.logger.With(zap.String("method", "RefreshCampaigns"))
	campaigns, err := h.ledger.Campaigns(ctx)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.UpdateCampaigns(ctx, campaigns); err != nil {
			lgr.Warn("cannot cache campaigns", zap.Error(err))
		}
	}
	if h.db != nil {
		if err := h.db.UpsertCampaigns(ctx, campaigns); err != nil {
			lgr.Warn("cannot store campaigns", zap.Error(err))
		}
	}
	return campaigns, nil
}

// NewCampaignView derives the display values of c at now.
func NewCampaignView(c *types.Campaign, now time.Time) *types.CampaignView {
	progress := utils.Percentage(c.Target, c.AmountCollected)
	if progress > 100 {
		progress = 100
	}
	return &types.CampaignView{
		Campaign:       c,
		TargetEther:    utils.FormatEther(c.Target, CardEtherPlaces),
		CollectedEther: utils.FormatEther(c.AmountCollected, CardEtherPlaces),
		DaysLeft:       utils.DaysLeft(c.Deadline, now),
		Expired:        isExpired(c, now),
		Progress:       progress,
	}
}

// isExpired treats a deadline equal to now as expired.
func isExpired(c *types.Campaign, now time.Time) bool {
	return c.Deadline <= now.Unix()
}

// FilterCampaigns keeps the views matching owner and status. Paging is left
// to the caller.
func FilterCampaigns(views []*types.CampaignView, filter types.CampaignsFilter) []*types.CampaignView {
	if filter.Owner == "" && filter.Status == "" {
		return views
	}
	filtered := make([]*types.CampaignView, 0, len(views))
	for _, v := range views {
		if filter.Owner != "" && !utils.SameAddress(v.Owner, filter.Owner) {
			continue
		}
		switch filter.Status {
		case types.CampaignActive:
			if v.Expired {
				continue
			}
		case types.CampaignExpired:
			if !v.Expired {
				continue
			}
		}
		filtered = append(filtered, v)
	}
	return filtered
}
