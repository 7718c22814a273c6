// Package db
package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/zap"
	"gotest.tools/assert"

	"github.com/kardiachain/crowdfund-backend/types"
)

func SetupMGO(t *testing.T, lgr *zap.Logger) (*mongoDB, func()) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "4.4",
	}
	res, err := pool.RunWithOptions(runOpts, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		t.Skipf("Could not start resource: %s", err)
	}
	_ = res.Expire(120)

	var mgo *mongoDB
	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	if err := pool.Retry(func() error {
		cfg := Config{
			URL:     fmt.Sprintf("mongodb://localhost:%s", res.GetPort("27017/tcp")),
			Logger:  lgr,
			MinConn: 1,
			MaxConn: 4,
			DbName:  "crowdfund",
		}
		var err error
		mgo, err = newMongoDB(cfg)
		if err != nil {
			return err
		}
		return mgo.ping(context.Background())
	}); err != nil {
		_ = pool.Purge(res)
		t.Fatalf("Could not connect to mongo: %s", err)
	}

	return mgo, func() {
		_ = mgo.dropDatabase(context.Background())
		_ = pool.Purge(res)
	}
}

func TestMongo_ReadModel(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	lgr, err := zap.NewDevelopment()
	assert.NilError(t, err)
	mgo, stop := SetupMGO(t, lgr)
	defer stop()

	t.Run("campaigns", func(t *testing.T) {
		campaigns := []*types.Campaign{
			{ID: 0, Owner: "0xA", Title: "Water", Target: "1000", AmountCollected: "0", Deadline: 1900000000},
			{ID: 1, Owner: "0xB", Title: "Books", Target: "2000", AmountCollected: "10", Deadline: 1800000000},
		}
		assert.NilError(t, mgo.UpsertCampaigns(ctx, campaigns))

		campaigns[1].AmountCollected = "20"
		assert.NilError(t, mgo.UpsertCampaigns(ctx, campaigns[1:]))

		all, err := mgo.Campaigns(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 2, len(all))
		assert.Equal(t, "Water", all[0].Title)

		c, err := mgo.Campaign(ctx, 1)
		assert.NilError(t, err)
		assert.Equal(t, "20", c.AmountCollected)

		_, err = mgo.Campaign(ctx, 42)
		assert.Assert(t, errors.Is(err, types.ErrCampaignNotFound))
	})

	t.Run("donations keep ledger order", func(t *testing.T) {
		donations := []*types.Donation{
			{Donator: "0x2", Amount: "5"},
			{Donator: "0x1", Amount: "9"},
			{Donator: "0x2", Amount: "1"},
		}
		assert.NilError(t, mgo.ReplaceDonations(ctx, 3, donations))
		assert.Equal(t, uint64(0), donations[2].CampaignID)
		assert.Equal(t, 0, donations[2].Index)
		got, err := mgo.Donations(ctx, 3)
		assert.NilError(t, err)
		assert.Equal(t, 3, len(got))
		for i := range donations {
			assert.Equal(t, donations[i].Donator, got[i].Donator)
			assert.Equal(t, donations[i].Amount, got[i].Amount)
		}

		assert.NilError(t, mgo.ReplaceDonations(ctx, 3, donations[:1]))
		got, err = mgo.Donations(ctx, 3)
		assert.NilError(t, err)
		assert.Equal(t, 1, len(got))

		other, err := mgo.Donations(ctx, 4)
		assert.NilError(t, err)
		assert.Equal(t, 0, len(other))
	})
}
