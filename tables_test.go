package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cursork/cinlook/cin"
	"github.com/cursork/cinlook/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLoadTablesPairs(t *testing.T) {
	coord, err := LoadTables(context.Background(), testPaths)
	require.NoError(t, err)

	name, _ := coord.Compose().Name()
	assert.Equal(t, "注音", name)
	name, _ = coord.Reference().Name()
	assert.Equal(t, "倉頡", name)
}

func TestLoadTablesSharesOneFile(t *testing.T) {
	coord, err := LoadTables(context.Background(), TablePaths{Compose: cangjieTable})
	require.NoError(t, err)
	assert.Same(t, coord.Compose(), coord.Reference())

	coord, err = LoadTables(context.Background(), TablePaths{Compose: cangjieTable, Reference: cangjieTable})
	require.NoError(t, err)
	assert.Same(t, coord.Compose(), coord.Reference())
}

func TestLoadTablesNoCompose(t *testing.T) {
	_, err := LoadTables(context.Background(), TablePaths{Reference: cangjieTable})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--compose")
}

func TestLoadTablesMissingReference(t *testing.T) {
	_, err := LoadTables(context.Background(), TablePaths{Compose: phoneticTable, Reference: "testdata/none.cin"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTablesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadTables(ctx, testPaths)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTablePathsFiles(t *testing.T) {
	assert.Equal(t, []string{"a.cin"}, TablePaths{Compose: "a.cin"}.Files())
	assert.Equal(t, []string{"a.cin"}, TablePaths{Compose: "a.cin", Reference: "a.cin"}.Files())
	assert.Equal(t, []string{"a.cin", "b.cin"}, TablePaths{Compose: "a.cin", Reference: "b.cin"}.Files())
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func nextReload(t *testing.T, ch <-chan reloadEvent) reloadEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "reload channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
	return reloadEvent{}
}

func TestWatchTablesReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	paths := TablePaths{
		Compose:   filepath.Join(dir, "phonetic.cin"),
		Reference: filepath.Join(dir, "cangjie.cin"),
	}
	copyFile(t, phoneticTable, paths.Compose)
	copyFile(t, cangjieTable, paths.Reference)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := watch.New(paths.Files(), watch.WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	reloads := watchTables(ctx, w, paths)

	// A table with one more entry
	data, err := os.ReadFile(cangjieTable)
	require.NoError(t, err)
	extended := []byte(string(data[:len(data)-len("%chardef end\n")]) + "ykb 捌\n%chardef end\n")
	require.NoError(t, os.WriteFile(paths.Reference, extended, 0o644))

	ev := nextReload(t, reloads)
	require.NoError(t, ev.err)
	assert.True(t, ev.watched)
	assert.Equal(t, paths.Reference, ev.path)
	chars, err := ev.coord.Reference().Lookup("ykb", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"八", "捌"}, chars)

	// A broken table reports the error and carries no tables
	require.NoError(t, os.WriteFile(paths.Compose, []byte("%keyname begin\n1 ㄅ\n"), 0o644))
	ev = nextReload(t, reloads)
	require.Error(t, ev.err)
	assert.True(t, cin.IsFormatError(ev.err))
	assert.Nil(t, ev.coord)

	cancel()
	w.Stop()
	for range reloads {
	}
}

func TestWatchTablesRemoved(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	paths := TablePaths{Compose: filepath.Join(dir, "cangjie.cin")}
	copyFile(t, cangjieTable, paths.Compose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := watch.New(paths.Files(), watch.WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	reloads := watchTables(ctx, w, paths)

	require.NoError(t, os.Remove(paths.Compose))
	ev := nextReload(t, reloads)
	require.Error(t, ev.err)
	assert.Contains(t, ev.err.Error(), "removed")

	w.Stop()
	for range reloads {
	}
}
