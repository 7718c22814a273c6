package cache

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

// KeyDraft is the single slot holding the in-progress creation form.
const KeyDraft = "campaignDraft"

// DraftKey scopes the draft slot to a browser session.
func DraftKey(session string) string {
	if session == "" {
		return KeyDraft
	}
	return KeyDraft + "#" + session
}

// DraftStore persists one draft. It is single-slot and unversioned: every
// save overwrites the previous value.
type DraftStore struct {
	key    string
	client IDraft
	logger *zap.Logger
}

func NewDraftStore(client IDraft, session string, logger *zap.Logger) *DraftStore {
	key := DraftKey(session)
	return &DraftStore{
		key:    key,
		client: client,
		logger: logger.With(zap.String("draft", key)),
	}
}

func (s *DraftStore) Key() string {
	return s.key
}

// Load returns the persisted draft. Missing, oversized or malformed values all
// read as absent; only the log tells them apart.
func (s *DraftStore) Load(ctx context.Context) (*types.CampaignDraft, bool) {
	lgr := s.logger.With(zap.String("method", "Load"))
	raw, err := s.client.DraftRaw(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			lgr.Warn("cannot read draft", zap.Error(err))
		}
		return nil, false
	}
	if len(raw) > MaxDraftSize {
		lgr.Warn("discard draft", zap.Error(types.ErrDraftTooLarge), zap.Int("size", len(raw)))
		return nil, false
	}
	var draft types.CampaignDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		lgr.Warn("discard draft", zap.Error(types.ErrDraftMalformed), zap.NamedError("cause", err))
		return nil, false
	}
	return &draft, true
}

func (s *DraftStore) Save(ctx context.Context, draft types.CampaignDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	if len(data) > MaxDraftSize {
		return types.ErrDraftTooLarge
	}
	return s.client.SetDraftRaw(ctx, s.key, string(data))
}

func (s *DraftStore) Clear(ctx context.Context) error {
	return s.client.DeleteDraft(ctx, s.key)
}
