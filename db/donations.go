// Package db
package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

func (m *mongoDB) ReplaceDonations(ctx context.Context, campaignID uint64, donations []*types.Donation) error {
	lgr := m.logger.With(zap.String("method", "ReplaceDonations"), zap.Uint64("campaignId", campaignID))
	col := m.wrapper.C(cDonations)
	if _, err := col.RemoveAll(ctx, bson.M{"campaignId": campaignID}); err != nil {
		lgr.Warn("cannot remove old donations", zap.Error(err))
		return err
	}
	if len(donations) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(donations))
	for i, doc := range donationDocs(campaignID, donations) {
		models[i] = mongo.NewInsertOneModel().SetDocument(doc)
	}
	if _, err := col.BulkInsert(ctx, models); err != nil {
		lgr.Warn("cannot insert donations", zap.Int("size", len(donations)), zap.Error(err))
		return err
	}
	return nil
}

// donationDocs stamps campaign and position on copies, leaving the
// caller's slice untouched.
func donationDocs(campaignID uint64, donations []*types.Donation) []*types.Donation {
	docs := make([]*types.Donation, len(donations))
	for i, donation := range donations {
		d := *donation
		d.CampaignID = campaignID
		d.Index = i
		docs[i] = &d
	}
	return docs
}

func (m *mongoDB) Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error) {
	var donations []*types.Donation
	cursor, err := m.wrapper.C(cDonations).Find(ctx, bson.M{"campaignId": campaignID}, m.wrapper.FindSetSort("index"))
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}
