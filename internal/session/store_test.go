package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/log"
	"github.com/nexuscore/nexus/internal/orchestrator"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"), log.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "Project Notes")
	require.NoError(t, err)
	assert.Equal(t, "Project Notes", sess.Title)
	assert.False(t, sess.Pinned)

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "Project Notes", loaded.Title)
	assert.Zero(t, loaded.TurnCount)
}

func TestCreate_SequentialDefaultTitles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "")
	require.NoError(t, err)
	second, err := store.Create(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "New Chat 1", first.Title)
	assert.Equal(t, "New Chat 2", second.Title)
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestList_PinnedFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, "older")
	require.NoError(t, err)
	_, err = store.Create(ctx, "newer")
	require.NoError(t, err)

	require.NoError(t, store.TogglePin(ctx, older.ID))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "older", sessions[0].Title, "pinned session sorts first")
	assert.True(t, sessions[0].Pinned)
}

func TestRename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "New Chat 1")
	require.NoError(t, err)

	require.NoError(t, store.Rename(ctx, sess.ID, "Budget Questions"))

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budget Questions", loaded.Title)

	err = store.Rename(ctx, uuid.New(), "nope")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestTogglePin_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "pin me")
	require.NoError(t, err)

	require.NoError(t, store.TogglePin(ctx, sess.ID))
	loaded, _ := store.Get(ctx, sess.ID)
	assert.True(t, loaded.Pinned)

	require.NoError(t, store.TogglePin(ctx, sess.ID))
	loaded, _ = store.Get(ctx, sess.ID)
	assert.False(t, loaded.Pinned)
}

func TestDelete_RemovesSessionAndTurns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "doomed")
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: "hello",
	}))

	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err = store.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	turns, err := store.Turns(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)

	err = store.Delete(ctx, sess.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestAppendTurn_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "chat")
	require.NoError(t, err)

	answer := &orchestrator.StructuredAnswer{
		Reasoning:   "thought about it",
		Answer:      "here is the reply",
		ContextUsed: []string{"snippet one", "snippet two"},
	}
	require.NoError(t, store.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: "question?",
	}))
	require.NoError(t, store.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleAssistant, Answer: answer,
	}))

	turns, err := store.Turns(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, orchestrator.RoleUser, turns[0].Role)
	assert.Equal(t, "question?", turns[0].Content)
	assert.Nil(t, turns[0].Answer)

	assert.Equal(t, orchestrator.RoleAssistant, turns[1].Role)
	require.NotNil(t, turns[1].Answer)
	assert.Equal(t, *answer, *turns[1].Answer)

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TurnCount)
}

func TestAppendTurn_BumpsUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "ordering")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, store.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: "bump me",
	}))

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, loaded.UpdatedAt.After(sess.UpdatedAt),
		"appending a turn must advance the session's ordering key")
	assert.Equal(t, 1, loaded.TurnCount)
}

func TestAppendTurn_UnknownSession(t *testing.T) {
	store := newTestStore(t)

	err := store.AppendTurn(context.Background(), uuid.New(), orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: "orphan",
	})
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := Open(path, log.NewNop())
	require.NoError(t, err)
	sess, err := store.Create(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, store.AppendTurn(ctx, sess.ID, orchestrator.ChatTurn{
		Role: orchestrator.RoleUser, Content: "survive restart",
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, log.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.Title)

	turns, err := reopened.Turns(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "survive restart", turns[0].Content)
}

func TestNeedsAutoTitle(t *testing.T) {
	assert.True(t, NeedsAutoTitle("New Chat"))
	assert.True(t, NeedsAutoTitle("New Chat 3"))
	assert.False(t, NeedsAutoTitle("Budget Questions"))
	assert.False(t, NeedsAutoTitle("New Chatter")) // Prefix requires the space
}

func TestNextTitle(t *testing.T) {
	assert.Equal(t, "New Chat 1", NextTitle(nil))
	assert.Equal(t, "New Chat 2", NextTitle([]string{"New Chat 1"}))
	assert.Equal(t, "New Chat 2", NextTitle([]string{"New Chat 1", "New Chat 3"}))
}
