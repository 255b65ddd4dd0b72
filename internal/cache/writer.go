// Package cache persists snapshots as a line-oriented map literal:
//
//	{
//	"vm-host-1":"0.12, 0.34, 0.56",
//	"vm-host-2":""
//	}
//
// One quoted host:value pair per line, roster order, no trailing comma
// on the last entry. A host that failed collection is always present
// with an empty-string value, so every run yields exactly one line per
// roster entry. The file is replaced atomically: readers see either the
// previous complete snapshot or the new one, never a torn write.
package cache

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/poll"
)

// Write serializes the snapshot and atomically replaces the file at
// path. The content lands in a temp file in the same directory first,
// is synced, then renamed over the target, so a crash or a concurrent
// reader can never observe a partial snapshot.
func Write(path string, snap *poll.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't create cache directory: "+dir,
			"Check permissions on the parent directory")
	}

	tmp, err := os.CreateTemp(dir, ".loadwatch-*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't create temp file for the cache",
			"Check permissions and free space on "+dir)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
	}

	if _, err := tmp.WriteString(Serialize(snap)); err != nil {
		cleanup()
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't write the cache file",
			"Check free space on "+dir)
	}

	// Flush to disk before the rename so the replacement is durable.
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't sync the cache file to disk", "")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't close the cache temp file", "")
	}

	// CreateTemp files are 0600; the cache is meant to be read by
	// other tooling.
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't set cache file permissions", "")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't replace the cache file: "+path,
			"Check permissions on "+dir)
	}

	return nil
}

// Serialize renders the snapshot in the cache file format. A failed
// host serializes as an empty string.
func Serialize(snap *poll.Snapshot) string {
	var b strings.Builder
	b.WriteString("{\n")

	for i, r := range snap.Results {
		value := r.Value
		if r.Failed() {
			value = ""
		}
		b.WriteString(strconv.Quote(r.Host))
		b.WriteString(":")
		b.WriteString(strconv.Quote(value))
		if i < len(snap.Results)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString("}\n")
	return b.String()
}
