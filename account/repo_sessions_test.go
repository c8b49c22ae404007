package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsAddRemoveByValue(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, env.sessions.Add(ctx, userID, "token-a"))
	require.NoError(t, env.sessions.Add(ctx, userID, "token-b"))

	ok, err := env.sessions.Exists(ctx, userID, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// removal targets exactly one value, the rest survive
	require.NoError(t, env.sessions.Remove(ctx, userID, "token-a"))

	ok, err = env.sessions.Exists(ctx, userID, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.sessions.Exists(ctx, userID, "token-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionsRemoveAbsentIsNoop(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	assert.NoError(t, env.sessions.Remove(ctx, uuid.New(), "never-added"))
}

func TestSessionsClearIsScopedToAccount(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, env.sessions.Add(ctx, alice, "alice-token"))
	require.NoError(t, env.sessions.Add(ctx, bob, "bob-token"))

	require.NoError(t, env.sessions.Clear(ctx, alice))

	count, err := env.sessions.Count(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	ok, err := env.sessions.Exists(ctx, bob, "bob-token")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsersListPublic(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	public, _ := env.register(t, "Ada", "a@x.com", "secret1")
	private, _ := env.register(t, "Eve", "e@x.com", "secret2")

	_, err := env.auth.UpdateProfile(ctx, private, map[string]any{"is_profile_public": false})
	require.NoError(t, err)

	listed, err := env.users.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, public.ID, listed[0].ID)
}
