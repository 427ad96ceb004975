package fundo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

// TestEngine_DurableAcrossRestart demonstrates that enqueued operations
// survive a simulated process crash and drain in their original order once
// a fresh engine starts over the same root.
func TestEngine_DurableAcrossRestart(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ctx := context.Background()

	// --- Phase 1: accept operations, crash before processing.

	first, err := New(Config{
		Root:      root,
		Name:      "background-ops",
		Processor: newRecordingProcessor(4),
	})
	require.NoError(t, err)

	for i, path := range []string{"a.txt", "b.txt", "c.txt"} {
		id, err := first.Enqueue(ctx, chunkUpload{Path: path, Offset: int64(i) * 512})
		require.NoError(t, err)
		require.Equal(t, int64(i+1), id)
	}
	require.Equal(t, 3, first.Count())

	// Simulate a crash by closing the engine without ever starting it.
	require.NoError(t, first.Close())

	// --- Phase 2: restart, replay, drain.

	proc := newRecordingProcessor(8)
	second, err := New(Config{
		Root:      root,
		Name:      "background-ops",
		Processor: proc,
	})
	require.NoError(t, err)
	require.Equal(t, 3, second.Count(), "replay should restore the pending set")

	// Start alone must schedule the replayed work; no new Enqueue needed.
	require.NoError(t, second.Start())
	ops := waitOperations(t, proc, 3)
	require.Len(t, ops, 3)
	for i, op := range ops {
		require.Equal(t, int64(i+1), op.ID, "replayed operations must drain in identity order")
	}
	payload, ok := ops[0].Payload.(chunkUpload)
	require.True(t, ok, "payload should round-trip as chunkUpload, got %T", ops[0].Payload)
	require.Equal(t, "a.txt", payload.Path)

	// New identities continue above the replayed watermark.
	id, err := second.Enqueue(ctx, chunkUpload{Path: "d.txt", Offset: 2048})
	require.NoError(t, err)
	require.Equal(t, int64(4), id)
	ops = waitOperations(t, proc, 1)
	require.Equal(t, int64(4), ops[len(ops)-1].ID)

	require.NoError(t, second.Close())

	// --- Phase 3: a clean drain leaves nothing to replay.

	third, err := New(Config{
		Root:      root,
		Name:      "background-ops",
		Processor: newRecordingProcessor(1),
	})
	require.NoError(t, err)
	require.Equal(t, 0, third.Count(), "completed operations must not replay")
	require.NoError(t, third.Close())
}

// TestSQLiteEngine_CallerOwnedHandle exercises the constructor that adopts
// an existing database handle instead of opening one under a root directory.
func TestSQLiteEngine_CallerOwnedHandle(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "fundo_ops.db")
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_journal=WAL")
	require.NoError(t, err)

	proc := newRecordingProcessor(4)
	eng, err := NewSQLiteEngine(db, Config{Processor: proc})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.Enqueue(ctx, chunkUpload{Path: "x.txt"})
	require.NoError(t, err)
	_, err = eng.Enqueue(ctx, chunkUpload{Path: "y.txt"})
	require.NoError(t, err)

	require.NoError(t, eng.Start())
	ops := waitOperations(t, proc, 2)
	require.Len(t, ops, 2)
	require.Equal(t, int64(1), ops[0].ID)
	require.Equal(t, int64(2), ops[1].ID)

	// Close tears down the engine and the adopted handle.
	require.NoError(t, eng.Close())
}
