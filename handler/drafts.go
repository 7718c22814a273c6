package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

type IDraft interface {
	// OpenDraft returns the creator of a session, creating it when needed.
	// Only new sessions should come through here.
	OpenDraft(ctx context.Context, session string) *CampaignCreator
	// ResumeDraft returns an open session, or reopens one whose draft is
	// still persisted. Anything else is ErrSessionNotFound.
	ResumeDraft(ctx context.Context, session string) (*CampaignCreator, error)
	CloseDraft(session string)
}

func (h *handler) OpenDraft(ctx context.Context, session string) *CampaignCreator {
	h.sessionsMtx.Lock()
	defer h.sessionsMtx.Unlock()
	if c, ok := h.sessions[session]; ok {
		c.lastUsed = h.now()
		return c
	}
	c, _ := newCampaignCreator(ctx, h, session)
	h.register(c)
	return c
}

func (h *handler) ResumeDraft(ctx context.Context, session string) (*CampaignCreator, error) {
	h.sessionsMtx.Lock()
	defer h.sessionsMtx.Unlock()
	if c, ok := h.sessions[session]; ok {
		c.lastUsed = h.now()
		return c, nil
	}
	c, restored := newCampaignCreator(ctx, h, session)
	if !restored {
		c.estimator.Stop()
		return nil, types.ErrSessionNotFound
	}
	h.register(c)
	return c, nil
}

// register must be called with sessionsMtx held.
func (h *handler) register(c *CampaignCreator) {
	c.lastUsed = h.now()
	c.autosaver.Start(context.Background())
	h.sessions[c.session] = c
	h.logger.Debug("Draft session opened", zap.String("session", c.session), zap.Int("open", len(h.sessions)))
}

func (h *handler) CloseDraft(session string) {
	h.sessionsMtx.Lock()
	c, ok := h.sessions[session]
	delete(h.sessions, session)
	h.sessionsMtx.Unlock()
	if ok {
		c.Close()
	}
}

func (h *handler) sessionCount() int {
	h.sessionsMtx.Lock()
	defer h.sessionsMtx.Unlock()
	return len(h.sessions)
}

func (h *handler) sweepSessions() {
	t := time.NewTicker(h.idleTimeout / 2)
	defer t.Stop()
	for {
		select {
		case <-h.stopSweep:
			return
		case <-t.C:
			h.evictIdle()
		}
	}
}

// evictIdle closes sessions untouched for idleTimeout. Their non-empty
// drafts stay persisted, so ResumeDraft can bring them back.
func (h *handler) evictIdle() int {
	deadline := h.now().Add(-h.idleTimeout)
	var idle []*CampaignCreator
	h.sessionsMtx.Lock()
	for id, c := range h.sessions {
		if c.lastUsed.Before(deadline) && !c.Busy() {
			idle = append(idle, c)
			delete(h.sessions, id)
		}
	}
	open := len(h.sessions)
	h.sessionsMtx.Unlock()

	for _, c := range idle {
		c.Close()
	}
	if len(idle) > 0 {
		h.logger.Info("Evicted idle draft sessions", zap.Int("evicted", len(idle)), zap.Int("open", open))
	}
	return len(idle)
}
