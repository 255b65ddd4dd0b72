package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadwatch/loadwatch/internal/config"
	lwerrors "github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/poll"
)

// scriptedExecutor returns canned output or errors per host.
type scriptedExecutor struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (s *scriptedExecutor) Run(ctx context.Context, host string) ([]byte, error) {
	s.calls = append(s.calls, host)
	if err, ok := s.errs[host]; ok {
		return nil, err
	}
	return []byte(s.outputs[host]), nil
}

// TestRunCollect_EndToEnd covers the full pipeline: a reachable local
// host and an unreachable remote produce a cache file with one entry
// per roster host, the failure recorded as an empty value.
func TestRunCollect_EndToEnd(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "loadavg")

	cfg := config.DefaultConfig()
	cfg.Hosts = []string{"local-host", "remote-a"}
	cfg.CacheFile = cachePath

	local := &scriptedExecutor{outputs: map[string]string{
		"local-host": " 10:00  up 2 days, load average: 1.00, 1.01, 1.02\n",
	}}
	remote := &scriptedExecutor{errs: map[string]error{
		"remote-a": errors.New("dial tcp: connection refused"),
	}}
	dispatcher := &poll.Dispatcher{
		Identity: "local-host",
		Local:    local,
		Remote:   remote,
	}

	var out bytes.Buffer
	require.NoError(t, runCollect(cfg, dispatcher, &out))

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "{\n\"local-host\":\"1.00, 1.01, 1.02\",\n\"remote-a\":\"\"\n}\n", string(data))

	// The local host never went over the remote channel.
	assert.Equal(t, []string{"local-host"}, local.calls)
	assert.Equal(t, []string{"remote-a"}, remote.calls)

	assert.Contains(t, out.String(), "1 unreachable")
}

func TestRunCollect_AllHostsHealthy(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "loadavg")

	cfg := config.DefaultConfig()
	cfg.Hosts = []string{"a", "b"}
	cfg.CacheFile = cachePath

	exec := &scriptedExecutor{outputs: map[string]string{
		"a": "load average: 0.10, 0.20, 0.30",
		"b": "load average: 0.40, 0.50, 0.60",
	}}

	var out bytes.Buffer
	require.NoError(t, runCollect(cfg, exec, &out))
	assert.Contains(t, out.String(), "Collected 2 hosts")
	assert.NotContains(t, out.String(), "unreachable")
}

// Per-host failures never fail the run; only an unwritable cache does.
func TestRunCollect_WriteFailureIsFatal(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := config.DefaultConfig()
	cfg.Hosts = []string{"a"}
	cfg.CacheFile = filepath.Join(blocker, "sub", "loadavg")

	exec := &scriptedExecutor{outputs: map[string]string{
		"a": "load average: 0.10, 0.20, 0.30",
	}}

	var out bytes.Buffer
	err := runCollect(cfg, exec, &out)
	require.Error(t, err)
	assert.True(t, lwerrors.IsCode(err, lwerrors.ErrCache))

	code, ok := lwerrors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 2, code)
}

func TestRunCollect_HostFailuresExitZero(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "loadavg")

	cfg := config.DefaultConfig()
	cfg.Hosts = []string{"a", "b", "c"}
	cfg.CacheFile = cachePath

	exec := &scriptedExecutor{errs: map[string]error{
		"a": errors.New("down"),
		"b": errors.New("down"),
		"c": errors.New("down"),
	}}

	var out bytes.Buffer
	// Even a run where every host failed produces a snapshot and
	// reports success to the scheduler.
	require.NoError(t, runCollect(cfg, exec, &out))
	assert.Contains(t, out.String(), "3 unreachable")
}
