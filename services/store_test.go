package services

import (
	"context"
	"testing"

	"eqcoach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var missing models.DebateSnapshot
	assert.ErrorIs(t, store.Load(ctx, KindDebate, "d1", &missing), ErrSessionNotFound)

	in := models.DebateSnapshot{ID: "d1", Email: "ada@example.com", Draft: "draft", State: models.DebateState{Stage: models.DebateRebuttal}}
	require.NoError(t, store.Save(ctx, KindDebate, "d1", in))

	var out models.DebateSnapshot
	require.NoError(t, store.Load(ctx, KindDebate, "d1", &out))
	assert.Equal(t, "draft", out.Draft)
	assert.Equal(t, models.DebateRebuttal, out.State.Stage)

	var other models.JourneySnapshot
	assert.ErrorIs(t, store.Load(ctx, KindJourney, "d1", &other), ErrSessionNotFound, "kinds do not collide")

	require.NoError(t, store.Delete(ctx, KindDebate, "d1"))
	assert.ErrorIs(t, store.Load(ctx, KindDebate, "d1", &out), ErrSessionNotFound)
}

func TestMemoryStoreLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.TryLock(ctx, KindJourney, "j1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.TryLock(ctx, KindJourney, "j1")
	assert.False(t, ok)
	ok, _ = store.TryLock(ctx, KindJourney, "j2")
	assert.True(t, ok)

	require.NoError(t, store.Unlock(ctx, KindJourney, "j1"))
	ok, _ = store.TryLock(ctx, KindJourney, "j1")
	assert.True(t, ok)
}
