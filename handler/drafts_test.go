package handler

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardiachain/crowdfund-backend/types"
)

func TestResumeDraft_UnknownSession(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())

	c, err := env.h.ResumeDraft(ctx, "never-opened")
	require.ErrorIs(t, err, types.ErrSessionNotFound)
	assert.Nil(t, c)
	assert.Equal(t, 0, env.h.sessionCount())
}

func TestResumeDraft_PersistedDraft(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	env.h.CloseDraft("s1")
	require.Equal(t, 0, env.h.sessionCount())

	resumed, err := env.h.ResumeDraft(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, validDraft(), resumed.Draft())
	assert.Equal(t, 1, env.h.sessionCount())

	again, err := env.h.ResumeDraft(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, resumed, again)
}

func TestSessions_ClosedAfterSubmitAndReset(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())

	c := env.h.OpenDraft(ctx, "s1")
	c.Change(ctx, validDraft())
	require.Equal(t, 1, env.h.sessionCount())
	res := c.Submit(ctx, confirm(false))
	require.Nil(t, res.Err)
	assert.Equal(t, 0, env.h.sessionCount())

	c = env.h.OpenDraft(ctx, "s2")
	c.Change(ctx, validDraft())
	require.NoError(t, c.Reset(ctx))
	assert.Equal(t, 0, env.h.sessionCount())
	_, err := env.h.ResumeDraft(ctx, "s2")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestSessions_OpenResetDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	before := runtime.NumGoroutine()

	for i := 0; i < 200; i++ {
		c := env.h.OpenDraft(ctx, fmt.Sprintf("session-%d", i))
		require.NoError(t, c.Reset(ctx))
	}

	assert.Equal(t, 0, env.h.sessionCount())
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before+5 }, time.Second, 10*time.Millisecond)
}

func TestEvictIdle(t *testing.T) {
	ctx := context.Background()
	env := setupTestHandler(t, newFakeLedger())
	stale := env.h.OpenDraft(ctx, "stale")
	stale.Change(ctx, validDraft())

	env.h.now = func() time.Time { return testNow.Add(env.h.idleTimeout - time.Minute) }
	env.h.OpenDraft(ctx, "fresh")

	env.h.now = func() time.Time { return testNow.Add(env.h.idleTimeout + time.Minute) }
	assert.Equal(t, 1, env.h.evictIdle())
	assert.Equal(t, 1, env.h.sessionCount())

	// The evicted draft was persisted on close and can be resumed.
	d, ok := storedDraft(t, env, "stale")
	require.True(t, ok)
	assert.Equal(t, validDraft(), d)
	resumed, err := env.h.ResumeDraft(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, validDraft(), resumed.Draft())
}
