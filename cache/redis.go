// Package cache
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

const (
	KeyCampaigns = "#campaigns" // JSON list
)

type Redis struct {
	cfg    Config
	client *redis.Client

	logger *zap.Logger
}

func (c *Redis) DraftRaw(ctx context.Context, key string) (string, error) {
	result, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return result, err
}

func (c *Redis) SetDraftRaw(ctx context.Context, key string, data string) error {
	// drafts never expire
	return c.client.Set(ctx, key, data, 0).Err()
}

func (c *Redis) DeleteDraft(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Redis) Campaigns(ctx context.Context) ([]*types.Campaign, error) {
	result, err := c.client.Get(ctx, KeyCampaigns).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var campaigns []*types.Campaign
	if err := json.Unmarshal([]byte(result), &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (c *Redis) UpdateCampaigns(ctx context.Context, campaigns []*types.Campaign) error {
	data, err := json.Marshal(campaigns)
	if err != nil {
		return err
	}
	if _, err := c.client.Set(ctx, KeyCampaigns, string(data), c.cfg.DefaultExpiredTime).Result(); err != nil {
		c.logger.Warn("cannot update campaigns cache", zap.Error(err))
		return err
	}
	return nil
}
