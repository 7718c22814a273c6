package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

const DefaultAutosaveInterval = 30 * time.Second

// Autosaver periodically writes the current form into its DraftStore.
type Autosaver struct {
	store    *DraftStore
	interval time.Duration
	current  func() types.CampaignDraft

	saveMtx sync.Mutex

	mtx     sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}

	logger *zap.Logger
}

func NewAutosaver(store *DraftStore, interval time.Duration, current func() types.CampaignDraft, logger *zap.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		store:    store,
		interval: interval,
		current:  current,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.With(zap.String("autosave", store.Key())),
	}
}

func (a *Autosaver) Start(ctx context.Context) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.started || a.stopped {
		return
	}
	a.started = true
	go a.run(ctx)
}

func (a *Autosaver) run(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case <-ticker.C:
			a.SaveNow(ctx)
		}
	}
}

// SaveNow persists the current form if any field has content.
func (a *Autosaver) SaveNow(ctx context.Context) {
	a.saveMtx.Lock()
	defer a.saveMtx.Unlock()
	draft := a.current()
	if !draft.HasContent() {
		return
	}
	if err := a.store.Save(ctx, draft); err != nil {
		a.logger.Warn("cannot autosave draft", zap.Error(err))
	}
}

// Clear deletes the persisted draft once any running save is done.
func (a *Autosaver) Clear(ctx context.Context) error {
	a.saveMtx.Lock()
	defer a.saveMtx.Unlock()
	return a.store.Clear(ctx)
}

// Stop ends the timer and waits for the loop to exit. Safe to call twice.
func (a *Autosaver) Stop() {
	a.mtx.Lock()
	if a.stopped {
		a.mtx.Unlock()
		return
	}
	a.stopped = true
	started := a.started
	close(a.stop)
	a.mtx.Unlock()
	if started {
		<-a.done
	}
}
