// Package db
package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

func (m *mongoDB) UpsertCampaigns(ctx context.Context, campaigns []*types.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(campaigns))
	for i, c := range campaigns {
		models[i] = mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"id": c.ID}).
			SetReplacement(c)
	}
	if _, err := m.wrapper.C(cCampaigns).BulkUpsert(ctx, models); err != nil {
		m.logger.Warn("cannot upsert campaigns", zap.Int("size", len(campaigns)), zap.Error(err))
		return err
	}
	return nil
}

func (m *mongoDB) Campaigns(ctx context.Context) ([]*types.Campaign, error) {
	var campaigns []*types.Campaign
	cursor, err := m.wrapper.C(cCampaigns).Find(ctx, bson.M{}, m.wrapper.FindSetSort("id"))
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (m *mongoDB) Campaign(ctx context.Context, id uint64) (*types.Campaign, error) {
	var campaign *types.Campaign
	err := m.wrapper.C(cCampaigns).FindOne(ctx, bson.M{"id": id}).Decode(&campaign)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return campaign, nil
}
