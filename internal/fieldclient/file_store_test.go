package fieldclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queue", "events.json")

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	next := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, QueuedEvent{ID: "b", Seq: 2, MatchID: "m-1", Payload: goal(20), Status: StatusPending, RetryCount: 1, NextAttemptAt: &next}))
	require.NoError(t, store.Put(ctx, QueuedEvent{ID: "a", Seq: 1, MatchID: "m-1", Payload: goal(10), Status: StatusFailed, LastError: "status=400"}))
	require.NoError(t, store.Put(ctx, QueuedEvent{ID: "c", Seq: 3, MatchID: "m-2", Payload: goal(5), Status: StatusPending}))
	require.NoError(t, store.Delete(ctx, "c"))
	require.NoError(t, store.SetConflicted(ctx, "m-1", true))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)

	events, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].ID)
	require.Equal(t, StatusFailed, events[0].Status)
	require.Equal(t, "status=400", events[0].LastError)
	require.Equal(t, "b", events[1].ID)
	require.Equal(t, 1, events[1].RetryCount)
	require.NotNil(t, events[1].NextAttemptAt)
	require.True(t, next.Equal(*events[1].NextAttemptAt))
	require.Equal(t, goal(20), events[1].Payload)

	conflicted, err := reopened.Conflicted(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"m-1"}, conflicted)

	require.NoError(t, reopened.Clear(ctx))
	again, err := OpenFileStore(path)
	require.NoError(t, err)
	events, err = again.List(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := OpenFileStore(filepath.Join(dir, "events.json"))
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, store.Put(context.Background(), QueuedEvent{ID: string(rune('a' + i)), Seq: uint64(i + 1), MatchID: "m-1"}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "events.json", entries[0].Name())
}

func TestOpenFileStore_RejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFileStore(path)
	require.Error(t, err)
}

func TestQueue_FileStoreRecoversAfterRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.json")
	store, err := OpenFileStore(path)
	require.NoError(t, err)

	d := newFakeDeliverer()
	q := newTestQueue(t, store, d, nil)
	q.SetOnline(false)
	ids := enqueue(t, q, "m-1", goal(1), goal(2))
	q.Close()

	restarted, err := OpenFileStore(path)
	require.NoError(t, err)
	q2 := newTestQueue(t, restarted, d, nil)
	res, err := q2.Flush(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, 2, res.Delivered)
	require.Equal(t, ids, d.acceptedIDs())
}
