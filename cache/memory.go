package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

// Memory is a process local cache, used in development and tests.
type Memory struct {
	mtx    sync.RWMutex
	drafts map[string]string

	campaigns        []*types.Campaign
	campaignsExpires time.Time
	ttl              time.Duration

	logger *zap.Logger
}

func newMemory(cfg Config) *Memory {
	lgr := zap.NewNop()
	if cfg.Logger != nil {
		lgr = cfg.Logger.With(zap.String("cache", "memory"))
	}
	return &Memory{
		drafts: make(map[string]string),
		ttl:    cfg.DefaultExpiredTime,
		logger: lgr,
	}
}

func (m *Memory) DraftRaw(ctx context.Context, key string) (string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	data, ok := m.drafts[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return data, nil
}

func (m *Memory) SetDraftRaw(ctx context.Context, key string, data string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.drafts[key] = data
	return nil
}

func (m *Memory) DeleteDraft(ctx context.Context, key string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.drafts, key)
	return nil
}

func (m *Memory) Campaigns(ctx context.Context) ([]*types.Campaign, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.campaigns == nil || (m.ttl > 0 && time.Now().After(m.campaignsExpires)) {
		return nil, ErrCacheMiss
	}
	return m.campaigns, nil
}

func (m *Memory) UpdateCampaigns(ctx context.Context, campaigns []*types.Campaign) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.campaigns = campaigns
	m.campaignsExpires = time.Now().Add(m.ttl)
	return nil
}
