// Package cache
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

type Adapter string

const (
	RedisAdapter  Adapter = "redis"
	MemoryAdapter Adapter = "memory"
)

// MaxDraftSize bounds a persisted draft; anything larger is rejected.
const MaxDraftSize = 64 * 1024

type Config struct {
	Adapter  Adapter
	URL      string
	DB       int
	Password string

	IsFlush bool

	DefaultExpiredTime time.Duration

	Logger *zap.Logger
}

type Client interface {
	IDraft

	Campaigns(ctx context.Context) ([]*types.Campaign, error)
	UpdateCampaigns(ctx context.Context, campaigns []*types.Campaign) error
}

// IDraft is raw access to draft slots. Callers go through DraftStore.
type IDraft interface {
	DraftRaw(ctx context.Context, key string) (string, error)
	SetDraftRaw(ctx context.Context, key string, data string) error
	DeleteDraft(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

func New(cfg Config) (Client, error) {
	switch cfg.Adapter {
	case RedisAdapter:
		return newRedis(cfg)
	case MemoryAdapter:
		return newMemory(cfg), nil
	}
	return nil, errors.New("invalid cache config")
}

func newRedis(cfg Config) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	if cfg.IsFlush {
		msg, err := redisClient.FlushDB(context.Background()).Result()
		if err != nil || msg != "OK" {
			return nil, err
		}
	}

	logger := cfg.Logger.With(zap.String("cache", "redis"))
	client := &Redis{
		client: redisClient,
		logger: logger,
	}
	client.cfg = cfg
	return client, nil
}
