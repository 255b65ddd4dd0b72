package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lwerrors "github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/poll"
)

func snapshotOf(results ...poll.Result) *poll.Snapshot {
	return &poll.Snapshot{Taken: time.Now(), Results: results}
}

func TestSerialize(t *testing.T) {
	snap := snapshotOf(
		poll.Result{Host: "local-host", Value: "1.00, 1.01, 1.02"},
		poll.Result{Host: "remote-a", Err: errors.New("unreachable")},
	)

	want := `{
"local-host":"1.00, 1.01, 1.02",
"remote-a":""
}
`
	assert.Equal(t, want, Serialize(snap))
}

func TestSerialize_SingleEntryNoTrailingComma(t *testing.T) {
	snap := snapshotOf(poll.Result{Host: "a", Value: "0.10, 0.20, 0.30"})

	assert.Equal(t, "{\n\"a\":\"0.10, 0.20, 0.30\"\n}\n", Serialize(snap))
}

func TestSerialize_EmptySnapshot(t *testing.T) {
	assert.Equal(t, "{\n}\n", Serialize(snapshotOf()))
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadavg")
	snap := snapshotOf(
		poll.Result{Host: "a", Value: "0.10, 0.20, 0.30"},
		poll.Result{Host: "b", Value: "0.40, 0.50, 0.60"},
	)

	require.NoError(t, Write(path, snap))

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Host: "a", Value: "0.10, 0.20, 0.30"}, entries[0])
	assert.Equal(t, Entry{Host: "b", Value: "0.40, 0.50, 0.60"}, entries[1])
}

func TestWrite_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "loadavg")

	require.NoError(t, Write(path, snapshotOf(poll.Result{Host: "a", Value: "0"})))
	assert.FileExists(t, path)
}

func TestWrite_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadavg")

	require.NoError(t, Write(path, snapshotOf(poll.Result{Host: "a", Value: "1.00"})))
	require.NoError(t, Write(path, snapshotOf(poll.Result{Host: "a", Value: "2.00"})))

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2.00", entries[0].Value)
}

func TestWrite_LeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loadavg")

	require.NoError(t, Write(path, snapshotOf(poll.Result{Host: "a", Value: "1.00"})))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "loadavg", files[0].Name())
}

func TestWrite_SurfacesFailure(t *testing.T) {
	// A file where the cache directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Write(filepath.Join(blocker, "sub", "loadavg"), snapshotOf())
	require.Error(t, err)
	assert.True(t, lwerrors.IsCode(err, lwerrors.ErrCache))
}

func TestWrite_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadavg")
	require.NoError(t, Write(path, snapshotOf(poll.Result{Host: "a", Value: "1"})))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

// TestWrite_AtomicUnderConcurrentReads hammers the cache path with a
// polling reader while a writer alternates between two snapshots. The
// reader must always parse a complete mapping: either fully-old or
// fully-new, never a truncated or mixed file.
func TestWrite_AtomicUnderConcurrentReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadavg")

	old := snapshotOf(
		poll.Result{Host: "a", Value: "old-a"},
		poll.Result{Host: "b", Value: "old-b"},
	)
	fresh := snapshotOf(
		poll.Result{Host: "a", Value: "new-a"},
		poll.Result{Host: "b", Value: "new-b"},
	)
	require.NoError(t, Write(path, old))

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			if i%2 == 0 {
				require.NoError(t, Write(path, fresh))
			} else {
				require.NoError(t, Write(path, old))
			}
		}
	}()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		entries, err := ReadFile(path)
		require.NoError(t, err, "reader observed a torn cache file")
		require.Len(t, entries, 2, "reader observed a truncated cache file")

		// Values must come from one snapshot, not a mix.
		generation := entries[0].Value[:3]
		assert.Equal(t, generation+"-a", entries[0].Value)
		assert.Equal(t, generation+"-b", entries[1].Value)
	}

	close(done)
	wg.Wait()
}
