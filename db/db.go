// Package db
package db

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

type Adapter string

const (
	MGO Adapter = "mgo"
)

type Config struct {
	DbAdapter Adapter
	DbName    string
	URL       string
	MinConn   int
	MaxConn   int
	FlushDB   bool

	Logger *zap.Logger
}

type ICampaign interface {
	UpsertCampaigns(ctx context.Context, campaigns []*types.Campaign) error
	Campaigns(ctx context.Context) ([]*types.Campaign, error)
	Campaign(ctx context.Context, id uint64) (*types.Campaign, error)
}

type IDonation interface {
	// ReplaceDonations swaps the stored donations of a campaign for the given
	// list, keeping its order.
	ReplaceDonations(ctx context.Context, campaignID uint64, donations []*types.Donation) error
	Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error)
}

type Client interface {
	ping(ctx context.Context) error
	dropDatabase(ctx context.Context) error

	ICampaign
	IDonation
}

func NewClient(cfg Config) (Client, error) {
	switch cfg.DbAdapter {
	case MGO:
		return newMongoDB(cfg)
	default:
		return nil, errors.New("invalid db config")
	}
}
