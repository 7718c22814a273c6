package handler

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

// DonationSource lists the donations of a campaign in ledger order.
type DonationSource interface {
	Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error)
}

type donorRefresh struct {
	done      chan struct{}
	donations []*types.Donation
	err       error
}

// DonorAggregator reloads donor lists. Concurrent refreshes of one campaign
// all resolve to the result of the most recently started one, and only that
// result is published.
type DonorAggregator struct {
	source DonationSource
	store  ReadModel

	mtx    sync.Mutex
	latest map[uint64]*donorRefresh

	publishMtx sync.Mutex

	logger *zap.Logger
}

func NewDonorAggregator(source DonationSource, store ReadModel, logger *zap.Logger) *DonorAggregator {
	return &DonorAggregator{
		source: source,
		store:  store,
		latest: make(map[uint64]*donorRefresh),
		logger: logger.With(zap.String("component", "donors")),
	}
}

func (a *DonorAggregator) Refresh(ctx context.Context, campaignID uint64) ([]*types.Donation, error) {
	lgr := a.logger.With(zap.String("method", "Refresh"), zap.Uint64("campaignId", campaignID))
	r := &donorRefresh{done: make(chan struct{})}
	a.mtx.Lock()
	a.latest[campaignID] = r
	a.mtx.Unlock()

	r.donations, r.err = a.source.Donations(ctx, campaignID)
	if r.err == nil {
		a.publish(ctx, campaignID, r)
	} else {
		lgr.Warn("cannot load donations", zap.Error(r.err))
	}
	close(r.done)

	for {
		a.mtx.Lock()
		latest := a.latest[campaignID]
		a.mtx.Unlock()
		if latest == r {
			return r.donations, r.err
		}
		select {
		case <-latest.done:
			r = latest
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (a *DonorAggregator) publish(ctx context.Context, campaignID uint64, r *donorRefresh) {
	if a.store == nil {
		return
	}
	a.publishMtx.Lock()
	defer a.publishMtx.Unlock()
	a.mtx.Lock()
	superseded := a.latest[campaignID] != r
	a.mtx.Unlock()
	if superseded {
		return
	}
	if err := a.store.ReplaceDonations(ctx, campaignID, r.donations); err != nil {
		a.logger.Warn("cannot store donations", zap.Uint64("campaignId", campaignID), zap.Error(err))
	}
}

// RefreshAll refreshes several campaigns on a worker pool. Campaigns whose
// refresh failed are missing from the result.
func (a *DonorAggregator) RefreshAll(ctx context.Context, campaignIDs []uint64, poolSize int) (map[uint64][]*types.Donation, error) {
	lgr := a.logger.With(zap.String("method", "RefreshAll"))
	var (
		wg     sync.WaitGroup
		mtx    sync.Mutex
		result = make(map[uint64][]*types.Donation, len(campaignIDs))
	)
	p, err := ants.NewPoolWithFunc(poolSize, func(i interface{}) {
		defer wg.Done()
		id := i.(uint64)
		donations, err := a.Refresh(ctx, id)
		if err != nil {
			return
		}
		mtx.Lock()
		result[id] = donations
		mtx.Unlock()
	})
	if err != nil {
		return nil, err
	}
	defer p.Release()

	for _, id := range campaignIDs {
		wg.Add(1)
		if err := p.Invoke(id); err != nil {
			wg.Done()
			lgr.Warn("cannot submit refresh", zap.Uint64("campaignId", id), zap.Error(err))
		}
	}
	wg.Wait()
	return result, nil
}
