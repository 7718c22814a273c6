// Package main
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/db"
	"github.com/kardiachain/crowdfund-backend/types"
)

type campaignSource interface {
	Campaigns(ctx context.Context) ([]*types.Campaign, error)
}

type donorRefresher interface {
	RefreshAll(ctx context.Context, campaignIDs []uint64, poolSize int) (map[uint64][]*types.Donation, error)
}

// syncer mirrors the ledger into the read model.
type syncer struct {
	ledger   campaignSource
	store    db.ICampaign
	donors   donorRefresher
	poolSize int

	logger *zap.Logger
}

func (s *syncer) watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	if err := s.sync(ctx); err != nil {
		s.logger.Warn("cannot sync campaigns", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.sync(ctx); err != nil {
				s.logger.Warn("cannot sync campaigns", zap.Error(err))
			}
		}
	}
}

func (s *syncer) sync(ctx context.Context) error {
	lgr := s.logger.With(zap.String("method", "sync"))
	start := time.Now()
	campaigns, err := s.ledger.Campaigns(ctx)
	if err != nil {
		return err
	}
	if err := s.store.UpsertCampaigns(ctx, campaigns); err != nil {
		return err
	}
	ids := make([]uint64, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	donations, err := s.donors.RefreshAll(ctx, ids, s.poolSize)
	if err != nil {
		return err
	}
	total := 0
	for _, d := range donations {
		total += len(d)
	}
	lgr.Info("Synced", zap.Int("campaigns", len(campaigns)), zap.Int("donations", total), zap.Duration("took", time.Since(start)))
	return nil
}
