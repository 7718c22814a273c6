package handler

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/validator"
)

const (
	ownerAddr = "0xAbCdEf0000000000000000000000000000000001"
	donorAddr = "0x1234500000000000000000000000000000000002"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type providerError struct {
	code int
	msg  string
}

func (e *providerError) Error() string  { return e.msg }
func (e *providerError) ErrorCode() int { return e.code }

type fakeWallet struct {
	mtx         sync.Mutex
	address     string
	connectAddr string
	connectErr  error
	chainID     uint64
	switchErr   error
	connects    int
}

func (w *fakeWallet) Address(ctx context.Context) (string, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.address, nil
}

func (w *fakeWallet) Connect(ctx context.Context) (string, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.connects++
	if w.connectErr != nil {
		return "", w.connectErr
	}
	w.address = w.connectAddr
	return w.address, nil
}

func (w *fakeWallet) ActiveChainID(ctx context.Context) (uint64, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.chainID, nil
}

func (w *fakeWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.switchErr != nil {
		return w.switchErr
	}
	w.chainID = chainID
	return nil
}

type fakeLedger struct {
	mtx       sync.Mutex
	readyErr  error
	campaigns []*types.Campaign
	donations map[uint64][]*types.Donation
	createErr error
	donateErr error
	created   []types.CampaignRequest
	donated   []*big.Int
	// createGate blocks CreateCampaign until closed when set.
	createGate chan struct{}
}

func newFakeLedger(campaigns ...*types.Campaign) *fakeLedger {
	return &fakeLedger{campaigns: campaigns, donations: make(map[uint64][]*types.Donation)}
}

func (l *fakeLedger) Ready() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.readyErr
}

func (l *fakeLedger) CreateCampaign(ctx context.Context, req types.CampaignRequest) (uint64, error) {
	if l.createGate != nil {
		<-l.createGate
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.createErr != nil {
		return 0, l.createErr
	}
	l.created = append(l.created, req)
	id := uint64(len(l.campaigns))
	l.campaigns = append(l.campaigns, &types.Campaign{
		ID: id, Owner: req.Owner, Title: req.Title, Description: req.Description,
		Target: req.Target.String(), AmountCollected: "0", Deadline: req.Deadline, Image: req.Image,
	})
	return id, nil
}

func (l *fakeLedger) Donate(ctx context.Context, campaignID uint64, wei *big.Int) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.donateErr != nil {
		return l.donateErr
	}
	l.donated = append(l.donated, wei)
	l.donations[campaignID] = append(l.donations[campaignID], &types.Donation{
		CampaignID: campaignID, Index: len(l.donations[campaignID]), Donator: donorAddr, Amount: wei.String(),
	})
	c := l.campaigns[campaignID]
	collected, _ := new(big.Int).SetString(c.AmountCollected, 10)
	updated := *c
	updated.AmountCollected = new(big.Int).Add(collected, wei).String()
	l.campaigns[campaignID] = &updated
	return nil
}

func (l *fakeLedger) Campaigns(ctx context.Context) ([]*types.Campaign, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]*types.Campaign(nil), l.campaigns...), nil
}

func (l *fakeLedger) Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]*types.Donation(nil), l.donations[campaignID]...), nil
}

func (l *fakeLedger) EstimateCreationCost(ctx context.Context, req types.CampaignRequest) (*big.Int, error) {
	return big.NewInt(1e15), nil
}

func (l *fakeLedger) Created() []types.CampaignRequest {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]types.CampaignRequest(nil), l.created...)
}

func (l *fakeLedger) Donated() []*big.Int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]*big.Int(nil), l.donated...)
}

type fakeImages struct {
	err    error
	checks []string
}

func (f *fakeImages) CheckImage(ctx context.Context, url string) error {
	f.checks = append(f.checks, url)
	return f.err
}

type testEnv struct {
	h      *handler
	wallet *fakeWallet
	ledger *fakeLedger
	images *fakeImages
	cache  cache.Client
}

func setupTestHandler(t *testing.T, ledger *fakeLedger) *testEnv {
	lgr, err := zap.NewDevelopment()
	require.NoError(t, err)
	memory, err := cache.New(cache.Config{Adapter: cache.MemoryAdapter, Logger: lgr})
	require.NoError(t, err)
	wallet := &fakeWallet{address: ownerAddr, connectAddr: ownerAddr, chainID: types.SepoliaChainID}
	images := &fakeImages{}
	now := func() time.Time { return testNow }

	h, err := newHandler(Config{
		Wallet:           wallet,
		Ledger:           ledger,
		Images:           images,
		Network:          network.New(network.Config{Provider: wallet, Logger: lgr}),
		Validator:        validator.New(validator.DefaultPolicy(), now),
		Cache:            memory,
		AutosaveInterval: time.Hour,
		FeeDebounce:      10 * time.Millisecond,
		Now:              now,
		Logger:           lgr,
	})
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return &testEnv{h: h, wallet: wallet, ledger: ledger, images: images, cache: memory}
}

func validDraft() types.CampaignDraft {
	return types.CampaignDraft{
		Name:        "Alice",
		Title:       "Clean water",
		Description: "Wells for the village",
		Target:      "1.5",
		Deadline:    "2026-06-01",
		Image:       "https://example.com/banner.png",
	}
}

func activeCampaign(id uint64, owner string) *types.Campaign {
	return &types.Campaign{
		ID:              id,
		Owner:           owner,
		Title:           fmt.Sprintf("campaign %d", id),
		Target:          "2000000000000000000",
		AmountCollected: "0",
		Deadline:        testNow.Add(48 * time.Hour).Unix(),
	}
}

func expiredCampaign(id uint64, owner string) *types.Campaign {
	c := activeCampaign(id, owner)
	c.Deadline = testNow.Unix()
	return c
}

func lower(s string) string {
	return strings.ToLower(s)
}
