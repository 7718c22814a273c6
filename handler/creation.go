package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/fee"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/validator"
)

const (
	msgConnectFailed = "Failed to connect wallet: %v"
	msgImageInvalid  = "Please provide a valid image URL"
	msgCreateFailed  = "Failed to create campaign: %v"
	msgCreated       = "Campaign created successfully!"
)

// CampaignCreator drives one creation form: it owns the in-memory draft, its
// persisted slot, the autosave timer and the fee debounce.
type CampaignCreator struct {
	h       *handler
	session string

	mtx    sync.Mutex
	form   types.CampaignDraft
	errors types.FieldErrors
	state  types.CreationState
	busy   bool
	// lastUsed is guarded by the handler's sessionsMtx.
	lastUsed time.Time

	store     *cache.DraftStore
	autosaver *cache.Autosaver
	estimator *fee.Estimator

	logger *zap.Logger
}

// newCampaignCreator builds the creator of a session and reports whether a
// persisted draft was restored.
func newCampaignCreator(ctx context.Context, h *handler, session string) (*CampaignCreator, bool) {
	logger := h.logger.With(zap.String("session", session))
	c := &CampaignCreator{
		h:       h,
		session: session,
		errors:  types.FieldErrors{},
		state:   types.StateIdle,
		store:   cache.NewDraftStore(h.cache, session, logger),
		logger:  logger,
	}
	draft, restored := c.store.Load(ctx)
	if restored {
		c.form = *draft
		c.errors = h.validator.Validate(c.form)
		logger.Info("Draft restored")
	}
	c.autosaver = cache.NewAutosaver(c.store, h.autosaveInterval, c.Draft, logger)
	c.estimator = fee.New(fee.Config{
		Quoter:   h.ledger,
		Debounce: h.feeDebounce,
		Logger:   logger,
	})
	return c, restored
}

func (c *CampaignCreator) Session() string {
	return c.session
}

func (c *CampaignCreator) Draft() types.CampaignDraft {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.form
}

func (c *CampaignCreator) FieldErrors() types.FieldErrors {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return copyErrors(c.errors)
}

func (c *CampaignCreator) State() types.CreationState {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state
}

func (c *CampaignCreator) Busy() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.busy
}

// Change replaces the form, revalidates it and re-arms the fee estimate.
func (c *CampaignCreator) Change(ctx context.Context, draft types.CampaignDraft) types.FieldErrors {
	errs := c.h.validator.Validate(draft)
	c.mtx.Lock()
	c.form = draft
	c.errors = errs
	c.mtx.Unlock()

	address, err := c.h.wallet.Address(ctx)
	if err != nil {
		c.logger.Debug("cannot read wallet address", zap.Error(err))
	}
	c.estimator.Schedule(fee.Input{Address: address, Draft: draft, Errors: errs})
	return copyErrors(errs)
}

// Estimate returns the last completed fee estimate.
func (c *CampaignCreator) Estimate() types.GasEstimate {
	return c.estimator.Last()
}

// Progress derives the form step indicator.
func (c *CampaignCreator) Progress(ctx context.Context) types.ProgressStep {
	address, _ := c.h.wallet.Address(ctx)
	c.mtx.Lock()
	defer c.mtx.Unlock()
	switch {
	case address == "":
		return types.StepConnectWallet
	case blank(c.form.Title) || blank(c.form.Description) || blank(c.form.Target) || blank(c.form.Deadline):
		return types.StepFillDetails
	case !c.errors.Valid():
		return types.StepValidate
	default:
		return types.StepCreateCampaign
	}
}

// Reset empties the form, deletes the persisted draft and closes the
// session.
func (c *CampaignCreator) Reset(ctx context.Context) error {
	c.estimator.Stop()
	c.mtx.Lock()
	c.form = types.CampaignDraft{}
	c.errors = types.FieldErrors{}
	c.state = types.StateIdle
	c.mtx.Unlock()
	if err := c.autosaver.Clear(ctx); err != nil {
		return err
	}
	c.h.CloseDraft(c.session)
	return nil
}

// Submit runs the creation workflow once. A call made while a previous one is
// still running is rejected with a Busy error.
func (c *CampaignCreator) Submit(ctx context.Context, confirmer network.Confirmer) types.CreationResult {
	lgr := c.logger.With(zap.String("method", "Submit"))
	c.mtx.Lock()
	if c.busy {
		state := c.state
		c.mtx.Unlock()
		return types.CreationResult{State: state, Err: types.NewTxError(types.KindBusy, "A campaign is already being created", types.ErrBusy)}
	}
	c.busy = true
	c.mtx.Unlock()
	defer func() {
		c.mtx.Lock()
		c.busy = false
		c.mtx.Unlock()
	}()

	c.setState(types.StateValidating)
	draft := c.Draft()
	errs := c.h.validator.Validate(draft)
	c.mtx.Lock()
	c.errors = errs
	c.mtx.Unlock()
	if !errs.Valid() {
		return c.fail(types.ValidationError(copyErrors(errs)))
	}

	c.setState(types.StateNetworkCheck)
	if txErr := c.h.network.Ensure(ctx, confirmer); txErr != nil {
		return c.fail(txErr)
	}

	c.setState(types.StateWalletConnect)
	address, err := c.h.wallet.Address(ctx)
	if err == nil && address == "" {
		lgr.Info("No address found, connecting wallet")
		address, err = c.h.wallet.Connect(ctx)
	}
	if err != nil || address == "" {
		if err == nil {
			err = types.ErrNotConnected
		}
		return c.fail(types.NewTxError(types.KindWalletConnection, fmt.Sprintf(msgConnectFailed, err), err))
	}

	if err := c.h.ledger.Ready(); err != nil {
		return c.fail(Classify(err))
	}

	if image := strings.TrimSpace(draft.Image); image != "" && c.h.images != nil {
		if err := c.h.images.CheckImage(ctx, image); err != nil {
			lgr.Info("Image check failed", zap.String("image", image), zap.Error(err))
			fields := types.FieldErrors{types.FieldImage: msgImageInvalid}
			c.mtx.Lock()
			c.errors = copyErrors(fields)
			c.mtx.Unlock()
			txErr := types.NewTxError(types.KindResourceCheck, msgImageInvalid, err)
			txErr.Fields = fields
			return c.fail(txErr)
		}
	}

	req, err := validator.BuildRequest(address, draft)
	if err != nil {
		return c.fail(types.ValidationError(types.FieldErrors{types.FieldTarget: err.Error()}))
	}

	c.setState(types.StateSubmitting)
	// A submitted transaction is never abandoned with the request.
	submitCtx := context.WithoutCancel(ctx)
	id, err := c.h.ledger.CreateCampaign(submitCtx, req)
	if err != nil {
		lgr.Warn("Campaign creation failed", zap.Error(err))
		return c.fail(classify(err, fmt.Sprintf(msgCreateFailed, err)))
	}

	c.mtx.Lock()
	// Edits made while the transaction was pending are kept.
	edited := c.form != draft
	if !edited {
		c.form = types.CampaignDraft{}
		c.errors = types.FieldErrors{}
	}
	c.state = types.StateSucceeded
	c.mtx.Unlock()
	if edited {
		lgr.Info("Draft changed during submission, keeping it")
	} else {
		c.estimator.Stop()
		if err := c.autosaver.Clear(submitCtx); err != nil {
			lgr.Warn("cannot clear draft", zap.Error(err))
		}
	}
	if _, err := c.h.RefreshCampaigns(submitCtx); err != nil {
		lgr.Warn("cannot refresh campaigns", zap.Error(err))
	}
	lgr.Info(msgCreated, zap.Uint64("id", id))
	c.h.CloseDraft(c.session)

	return types.CreationResult{
		State:      types.StateSucceeded,
		CampaignID: id,
		Redirect:   types.NewRedirect(HomePath, c.h.creationDelay),
	}
}

func (c *CampaignCreator) setState(state types.CreationState) {
	c.mtx.Lock()
	c.state = state
	c.mtx.Unlock()
}

func (c *CampaignCreator) fail(txErr *types.TxError) types.CreationResult {
	c.setState(types.StateFailed)
	return types.CreationResult{State: types.StateFailed, Err: txErr}
}

// Close persists a non-empty form and stops the timers.
func (c *CampaignCreator) Close() {
	c.estimator.Stop()
	c.autosaver.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.autosaver.SaveNow(ctx)
}

func copyErrors(errs types.FieldErrors) types.FieldErrors {
	out := make(types.FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
