// Package handler orchestrates campaign creation and donations over the
// wallet, the ledger client and the read model.
package handler

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/db"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/validator"
)

const (
	DefaultCreationRedirectDelay = 1500 * time.Millisecond
	DefaultDonationRedirectDelay = 2 * time.Second
	DefaultPoolSize              = 8
	DefaultSessionIdleTimeout    = 30 * time.Minute

	HomePath = "/"
)

// Wallet is the user's wallet provider.
type Wallet interface {
	// Address returns "" when no account is connected.
	Address(ctx context.Context) (string, error)
	Connect(ctx context.Context) (string, error)
	network.Provider
}

// Ledger is the crowdfunding contract.
type Ledger interface {
	Ready() error
	CreateCampaign(ctx context.Context, req types.CampaignRequest) (uint64, error)
	Donate(ctx context.Context, campaignID uint64, wei *big.Int) error
	Campaigns(ctx context.Context) ([]*types.Campaign, error)
	Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error)
	EstimateCreationCost(ctx context.Context, req types.CampaignRequest) (*big.Int, error)
}

type ImageChecker interface {
	CheckImage(ctx context.Context, url string) error
}

// ReadModel stores what was last read from the ledger.
type ReadModel interface {
	db.ICampaign
	db.IDonation
}

type Config struct {
	Wallet    Wallet
	Ledger    Ledger
	Images    ImageChecker
	Network   *network.Reconciler
	Validator *validator.Validator

	// Optional.
	DB    ReadModel
	Cache cache.Client

	AutosaveInterval      time.Duration
	FeeDebounce           time.Duration
	CreationRedirectDelay time.Duration
	DonationRedirectDelay time.Duration
	PoolSize              int
	// SessionIdleTimeout evicts draft sessions untouched for this long.
	SessionIdleTimeout time.Duration

	Now    func() time.Time
	Logger *zap.Logger
}

type Handler interface {
	IDraft
	ICampaign
	IDonation

	Close()
}

type handler struct {
	wallet    Wallet
	ledger    Ledger
	images    ImageChecker
	network   *network.Reconciler
	validator *validator.Validator

	// Internal
	db     ReadModel
	cache  cache.Client
	donors *DonorAggregator

	autosaveInterval time.Duration
	feeDebounce      time.Duration
	creationDelay    time.Duration
	donationDelay    time.Duration
	poolSize         int
	idleTimeout      time.Duration

	sessionsMtx sync.Mutex
	sessions    map[string]*CampaignCreator
	stopSweep   chan struct{}
	closeOnce   sync.Once

	now    func() time.Time
	logger *zap.Logger
}

func New(cfg Config) (Handler, error) {
	return newHandler(cfg)
}

func newHandler(cfg Config) (*handler, error) {
	if cfg.Wallet == nil || cfg.Ledger == nil || cfg.Network == nil || cfg.Validator == nil {
		return nil, errors.New("invalid handler config")
	}
	h := &handler{
		wallet:           cfg.Wallet,
		ledger:           cfg.Ledger,
		images:           cfg.Images,
		network:          cfg.Network,
		validator:        cfg.Validator,
		db:               cfg.DB,
		cache:            cfg.Cache,
		autosaveInterval: cfg.AutosaveInterval,
		feeDebounce:      cfg.FeeDebounce,
		creationDelay:    cfg.CreationRedirectDelay,
		donationDelay:    cfg.DonationRedirectDelay,
		poolSize:         cfg.PoolSize,
		idleTimeout:      cfg.SessionIdleTimeout,
		stopSweep:        make(chan struct{}),
		sessions:         make(map[string]*CampaignCreator),
		now:              cfg.Now,
		logger:           cfg.Logger,
	}
	if h.autosaveInterval <= 0 {
		h.autosaveInterval = cache.DefaultAutosaveInterval
	}
	if h.creationDelay <= 0 {
		h.creationDelay = DefaultCreationRedirectDelay
	}
	if h.donationDelay <= 0 {
		h.donationDelay = DefaultDonationRedirectDelay
	}
	if h.poolSize <= 0 {
		h.poolSize = DefaultPoolSize
	}
	if h.idleTimeout <= 0 {
		h.idleTimeout = DefaultSessionIdleTimeout
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.cache == nil {
		memory, err := cache.New(cache.Config{Adapter: cache.MemoryAdapter, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		h.cache = memory
	}
	h.donors = NewDonorAggregator(cfg.Ledger, cfg.DB, cfg.Logger)
	go h.sweepSessions()
	return h, nil
}

// Close stops the idle sweep and every open draft session.
func (h *handler) Close() {
	h.closeOnce.Do(func() { close(h.stopSweep) })
	h.sessionsMtx.Lock()
	defer h.sessionsMtx.Unlock()
	for id, c := range h.sessions {
		c.Close()
		delete(h.sessions, id)
	}
}
