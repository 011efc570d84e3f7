package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychat/polychat/internal/core"
)

func testRepo(t *testing.T) *TurnsRepo {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTurnsRepo(db)
}

func TestTurns_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	contents := []string{"first", "second", "third", "fourth"}
	for i, c := range contents {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		require.NoError(t, repo.AddTurn(ctx, "s1", role, c))
	}

	turns, err := repo.GetTurns(ctx, "s1", 0, core.WindowEarliest)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	for i, turn := range turns {
		assert.Equal(t, contents[i], turn.Content)
	}
}

func TestTurns_EarliestWindowIsPrefix(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	for _, c := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.AddTurn(ctx, "s1", core.RoleUser, c))
	}

	turns, err := repo.GetTurns(ctx, "s1", 2, core.WindowEarliest)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "a", turns[0].Content)
	assert.Equal(t, "b", turns[1].Content)
}

func TestTurns_LatestWindowIsSuffixInOrder(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	for _, c := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.AddTurn(ctx, "s1", core.RoleUser, c))
	}

	turns, err := repo.GetTurns(ctx, "s1", 2, core.WindowLatest)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "d", turns[0].Content)
	assert.Equal(t, "e", turns[1].Content)
}

func TestTurns_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	require.NoError(t, repo.AddTurn(ctx, "s1", core.RoleUser, "hello"))
	require.NoError(t, repo.AddTurn(ctx, "s2", core.RoleUser, "other"))

	turns, err := repo.GetTurns(ctx, "s1", 0, core.WindowEarliest)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].Content)
}

func TestTurns_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	require.NoError(t, repo.AddTurn(ctx, "s1", core.RoleUser, "hello"))
	require.NoError(t, repo.DeleteTurns(ctx, "s1"))

	turns, err := repo.GetTurns(ctx, "s1", 0, core.WindowEarliest)
	require.NoError(t, err)
	assert.Empty(t, turns)

	// deleting an already-empty session is a no-op
	require.NoError(t, repo.DeleteTurns(ctx, "s1"))
}
