package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/loadwatch/loadwatch/internal/errors"
)

// Entry is one host:value pair from the cache file. Value is empty
// when collection for that host failed.
type Entry struct {
	Host  string
	Value string
}

// Failed reports whether this entry records a failed collection.
func (e Entry) Failed() bool {
	return e.Value == ""
}

// ForEach streams entries from a cache file without materializing the
// whole mapping, so memory stays flat regardless of roster size.
// Returning a non-nil error from fn stops the scan.
func ForEach(r io.Reader, fn func(Entry) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "{" || line == "}" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.WrapWithCode(err, errors.ErrCache,
			"Failed reading the cache file", "")
	}
	return nil
}

// Read materializes all entries from a cache file, preserving order.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	err := ForEach(r, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile reads all entries from the cache file at path. Callers are
// expected to call this fresh on each access rather than holding the
// result; the file may be replaced at any moment by a collection run.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrCache,
				"Cache file not found: "+path,
				"Run 'loadwatch collect' to produce a snapshot first")
		}
		return nil, errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't open the cache file: "+path, "")
	}
	defer f.Close() //nolint:errcheck

	return Read(f)
}

// errStopScan is a sentinel used to stop ForEach early once a lookup
// has found its host.
var errStopScan = fmt.Errorf("stop scan")

// Lookup streams the cache file at path for a single host, without
// loading the rest of the mapping. Returns the value and whether the
// host was found.
func Lookup(path, host string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, errors.WrapWithCode(err, errors.ErrCache,
			"Couldn't open the cache file: "+path, "")
	}
	defer f.Close() //nolint:errcheck

	var value string
	found := false
	err = ForEach(f, func(e Entry) error {
		if e.Host == host {
			value = e.Value
			found = true
			return errStopScan
		}
		return nil
	})
	if err != nil && err != errStopScan {
		return "", false, err
	}

	return value, found, nil
}

// parseLine parses one `"host":"value",` line. The trailing comma is
// optional; downstream readers tolerate it and so do we.
func parseLine(line string) (Entry, error) {
	host, rest, err := quotedPrefix(line)
	if err != nil {
		return Entry{}, malformed(line)
	}

	if !strings.HasPrefix(rest, ":") {
		return Entry{}, malformed(line)
	}

	value, rest, err := quotedPrefix(rest[1:])
	if err != nil {
		return Entry{}, malformed(line)
	}

	if rest = strings.TrimSpace(rest); rest != "" && rest != "," {
		return Entry{}, malformed(line)
	}

	return Entry{Host: host, Value: value}, nil
}

// quotedPrefix unquotes the leading quoted string of s and returns the
// unquoted value plus the remainder.
func quotedPrefix(s string) (string, string, error) {
	quoted, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", err
	}
	unquoted, err := strconv.Unquote(quoted)
	if err != nil {
		return "", "", err
	}
	return unquoted, s[len(quoted):], nil
}

func malformed(line string) error {
	return errors.New(errors.ErrCache,
		fmt.Sprintf("Malformed cache line: %s", line),
		"The cache file may have been edited by hand. Re-run 'loadwatch collect'.")
}
