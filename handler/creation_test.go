package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardiachain/crowdfund-backend/cache"
	"github.com/kardiachain/crowdfund-backend/network"
	"github.com/kardiachain/crowdfund-backend/types"
)

func confirm(answer bool) network.Confirmer {
	return network.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		return answer
	})
}

func storedDraft(t *testing.T, env *testEnv, session string) (types.CampaignDraft, bool) {
	raw, err := env.cache.DraftRaw(context.Background(), cache.DraftKey(session))
	if errors.Is(err, cache.ErrCacheMiss) {
		return types.CampaignDraft{}, false
	}
	require.NoError(t, err)
	var d types.CampaignDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d, true
}

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")
	assert.Empty(t, c.Change(ctx, validDraft()))
	c.autosaver.SaveNow(ctx)
	_, ok := storedDraft(t, env, "s1")
	require.True(t, ok)

	res := c.Submit(ctx, confirm(false))

	require.Nil(t, res.Err)
	assert.Equal(t, types.StateSucceeded, res.State)
	assert.Equal(t, uint64(0), res.CampaignID)
	require.NotNil(t, res.Redirect)
	assert.Equal(t, "/", res.Redirect.Path)
	assert.Equal(t, 1500*time.Millisecond, res.Redirect.Delay)

	created := env.ledger.Created()
	require.Len(t, created, 1)
	assert.Equal(t, "1500000000000000000", created[0].Target.String())
	assert.Equal(t, ownerAddr, created[0].Owner)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Unix(), created[0].Deadline)
	assert.Equal(t, []string{"https://example.com/banner.png"}, env.images.checks)

	_, ok = storedDraft(t, env, "s1")
	assert.False(t, ok)
	assert.Equal(t, types.CampaignDraft{}, c.Draft())
	assert.Equal(t, types.StateSucceeded, c.State())

	views, err := env.h.Campaigns(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Clean water", views[0].Title)
}

func TestSubmit_WrongNetworkDeclined(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.chainID = 1
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	c.autosaver.SaveNow(ctx)

	res := c.Submit(ctx, confirm(false))

	assert.Equal(t, types.StateFailed, res.State)
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindNetworkMismatch, res.Err.Kind)
	assert.Empty(t, env.ledger.Created())
	_, ok := storedDraft(t, env, "s1")
	assert.True(t, ok)
	assert.Equal(t, validDraft(), c.Draft())
}

func TestSubmit_WrongNetworkSwitched(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.chainID = 1
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(true))

	assert.Equal(t, types.StateSucceeded, res.State)
	assert.Equal(t, types.SepoliaChainID, env.wallet.chainID)
}

func TestSubmit_SwitchFails(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.chainID = 1
	env.wallet.switchErr = &providerError{code: 4902, msg: "unrecognized chain"}
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(true))

	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindNetworkMismatch, res.Err.Kind)
	assert.Empty(t, env.ledger.Created())
}

func TestSubmit_ValidationHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.chainID = 1
	c := env.h.OpenDraft(ctx, "s1")
	draft := validDraft()
	draft.Target = "5000"
	draft.Title = " "
	c.Change(ctx, draft)

	asked := false
	res := c.Submit(ctx, network.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		asked = true
		return true
	}))

	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindValidation, res.Err.Kind)
	assert.Contains(t, res.Err.Fields, types.FieldTarget)
	assert.Contains(t, res.Err.Fields, types.FieldTitle)
	assert.False(t, asked)
	assert.Equal(t, uint64(1), env.wallet.chainID)
	assert.Empty(t, env.ledger.Created())
	assert.Empty(t, env.images.checks)
}

func TestSubmit_ConnectsWallet(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.address = ""
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(false))
	assert.Equal(t, types.StateSucceeded, res.State)
	assert.Equal(t, 1, env.wallet.connects)
}

func TestSubmit_ConnectFails(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.wallet.address = ""
	env.wallet.connectErr = &providerError{code: 4001, msg: "user rejected"}
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindWalletConnection, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "Failed to connect wallet")
	assert.Empty(t, env.ledger.Created())
}

func TestSubmit_ContractNotReady(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.readyErr = types.ErrContractLoading
	env := setupTestHandler(t, ledger)
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindContractUnavailable, res.Err.Kind)
	assert.Contains(t, lower(res.Err.Message), "loading")

	ledger.mtx.Lock()
	ledger.readyErr = types.ErrContractInit
	ledger.mtx.Unlock()
	res = c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindContractUnavailable, res.Err.Kind)
	assert.Contains(t, lower(res.Err.Message), "error")
	assert.Empty(t, ledger.Created())
}

func TestSubmit_ImageCheckFails(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.images.err = types.ErrImageUnreachable
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	c.autosaver.SaveNow(ctx)

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindResourceCheck, res.Err.Kind)
	assert.Equal(t, "Please provide a valid image URL", res.Err.Fields[types.FieldImage])
	assert.Equal(t, res.Err.Fields, c.FieldErrors())
	assert.Empty(t, env.ledger.Created())
	_, ok := storedDraft(t, env, "s1")
	assert.True(t, ok)
}

func TestSubmit_NoImageSkipsCheck(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	env.images.err = types.ErrImageUnreachable
	c := env.h.OpenDraft(ctx, "s1")
	draft := validDraft()
	draft.Image = ""
	c.Change(ctx, draft)

	res := c.Submit(ctx, confirm(false))
	assert.Equal(t, types.StateSucceeded, res.State)
	assert.Empty(t, env.images.checks)
}

func TestSubmit_RejectedKeepsDraft(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.createErr = &providerError{code: 4001, msg: "User denied transaction signature"}
	env := setupTestHandler(t, ledger)
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	c.autosaver.SaveNow(ctx)

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindWalletRejection, res.Err.Kind)
	assert.Equal(t, validDraft(), c.Draft())
	_, ok := storedDraft(t, env, "s1")
	assert.True(t, ok)
}

func TestSubmit_UnknownFailure(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.createErr = errors.New("execution reverted")
	env := setupTestHandler(t, ledger)
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindUnknownTransaction, res.Err.Kind)
	assert.Equal(t, "Failed to create campaign: execution reverted", res.Err.Message)
}

func TestSubmit_BusyRejectsSecondTrigger(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.createGate = make(chan struct{})
	env := setupTestHandler(t, ledger)
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	first := make(chan types.CreationResult)
	go func() { first <- c.Submit(ctx, confirm(false)) }()
	require.Eventually(t, func() bool { return c.State() == types.StateSubmitting }, time.Second, time.Millisecond)

	res := c.Submit(ctx, confirm(false))
	require.NotNil(t, res.Err)
	assert.Equal(t, types.KindBusy, res.Err.Kind)
	assert.ErrorIs(t, res.Err, types.ErrBusy)

	close(ledger.createGate)
	assert.Equal(t, types.StateSucceeded, (<-first).State)
	assert.Len(t, ledger.Created(), 1)
	assert.False(t, c.Busy())
}

func TestSubmit_SurvivesCancelledRequest(t *testing.T) {
	ledger := newFakeLedger()
	ledger.createGate = make(chan struct{})
	env := setupTestHandler(t, ledger)
	ctx, cancel := context.WithCancel(context.Background())
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	done := make(chan types.CreationResult)
	go func() { done <- c.Submit(ctx, confirm(false)) }()
	require.Eventually(t, func() bool { return c.State() == types.StateSubmitting }, time.Second, time.Millisecond)
	cancel()
	close(ledger.createGate)
	assert.Equal(t, types.StateSucceeded, (<-done).State)
}

func TestOpenDraft_RestoresPersistedDraft(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	env.h.CloseDraft("s1")

	restored := env.h.OpenDraft(ctx, "s1")
	assert.Equal(t, validDraft(), restored.Draft())
	assert.Empty(t, restored.FieldErrors())

	other := env.h.OpenDraft(ctx, "s2")
	assert.Equal(t, types.CampaignDraft{}, other.Draft())
}

func TestOpenDraft_CorruptDraftStartsEmpty(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	require.NoError(t, env.cache.SetDraftRaw(ctx, cache.DraftKey("s1"), "{not json"))
	c := env.h.OpenDraft(ctx, "s1")
	assert.Equal(t, types.CampaignDraft{}, c.Draft())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	c.autosaver.SaveNow(ctx)

	require.NoError(t, c.Reset(ctx))
	assert.Equal(t, types.CampaignDraft{}, c.Draft())
	_, ok := storedDraft(t, env, "s1")
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")

	env.wallet.address = ""
	assert.Equal(t, types.StepConnectWallet, c.Progress(ctx))

	env.wallet.address = ownerAddr
	assert.Equal(t, types.StepFillDetails, c.Progress(ctx))

	draft := validDraft()
	draft.Target = "0"
	c.Change(ctx, draft)
	assert.Equal(t, types.StepValidate, c.Progress(ctx))

	c.Change(ctx, validDraft())
	assert.Equal(t, types.StepCreateCampaign, c.Progress(ctx))
}

func TestChange_SchedulesEstimate(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")
	assert.False(t, c.Estimate().Available())

	c.Change(ctx, validDraft())
	assert.Eventually(t, func() bool { return c.Estimate().Available() }, time.Second, 5*time.Millisecond)

	draft := validDraft()
	draft.Target = "abc"
	c.Change(ctx, draft)
	assert.False(t, c.Estimate().Available())
}

func TestSubmit_KeepsEditsMadeWhilePending(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.createGate = make(chan struct{})
	env := setupTestHandler(t, ledger)
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())

	done := make(chan types.CreationResult)
	go func() { done <- c.Submit(ctx, confirm(false)) }()
	require.Eventually(t, func() bool { return c.State() == types.StateSubmitting }, time.Second, time.Millisecond)

	next := validDraft()
	next.Title = "Second campaign"
	c.Change(ctx, next)
	close(ledger.createGate)

	res := <-done
	require.Nil(t, res.Err)
	assert.Equal(t, "Clean water", ledger.Created()[0].Title)
	assert.Equal(t, next, c.Draft())
	stored, ok := storedDraft(t, env, "s1")
	require.True(t, ok)
	assert.Equal(t, next, stored)
}
