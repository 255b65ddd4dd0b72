package poll

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/pkg/sshutil"
)

// Executor runs the status command against one host and returns its raw
// output. Implementations make a single attempt; retries happen across
// runs, driven by the external scheduler.
type Executor interface {
	Run(ctx context.Context, host string) ([]byte, error)
}

// LocalIdentity returns the identifier of the machine running the
// collector. Computed once per run by the caller.
func LocalIdentity() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	return hostname
}

// MatchesIdentity reports whether a roster entry refers to the local
// machine. A user@ prefix and :port suffix are ignored. A bare short
// name matches the first label of the other side's FQDN; two distinct
// FQDNs never match on their first labels alone, since hosts in
// different domains can share a leading label.
func MatchesIdentity(host, identity string) bool {
	if identity == "" {
		return false
	}

	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		host = host[atIdx+1:]
	}
	if colonIdx := strings.LastIndex(host, ":"); colonIdx != -1 {
		host = host[:colonIdx]
	}

	if host == identity {
		return true
	}

	hostLabel, hostDomain, _ := strings.Cut(host, ".")
	identityLabel, identityDomain, _ := strings.Cut(identity, ".")

	if hostDomain == "" && host == identityLabel {
		return true
	}
	if identityDomain == "" && identity == hostLabel {
		return true
	}
	return false
}

// LocalExecutor runs the status command as a local subprocess. The host
// argument is ignored; the dispatcher only routes here for the local
// identity.
type LocalExecutor struct {
	Command string
}

// Run executes the command through the user's shell and captures stdout.
func (e *LocalExecutor) Run(ctx context.Context, host string) ([]byte, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	command := exec.CommandContext(ctx, shell, "-c", e.Command)

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
				fmt.Sprintf("Local command timed out: %s", e.Command),
				"Raise 'timeout:' in your config if the machine is just slow.")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, errors.New(errors.ErrExec,
				fmt.Sprintf("Local command exited with code %d: %s", exitErr.ExitCode(), e.Command),
				strings.TrimSpace(stderr.String()))
		}
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't run the command locally",
			"Make sure the command exists and is executable.")
	}

	return stdout.Bytes(), nil
}

// SSHExecutor runs the status command over one SSH session per call.
type SSHExecutor struct {
	Command     string
	DialTimeout time.Duration

	// dial is swappable for tests; defaults to sshutil.Dial.
	dial func(host string, timeout time.Duration) (sshutil.Runner, error)
}

// NewSSHExecutor creates an executor that opens a fresh SSH session per
// host per run.
func NewSSHExecutor(command string, dialTimeout time.Duration) *SSHExecutor {
	return &SSHExecutor{
		Command:     command,
		DialTimeout: dialTimeout,
		dial: func(host string, timeout time.Duration) (sshutil.Runner, error) {
			return sshutil.Dial(host, timeout)
		},
	}
}

// Run connects to the host, executes the command, and returns stdout.
// Connection, authentication, and execution failures all come back as
// typed errors; the caller records them and moves on.
func (e *SSHExecutor) Run(ctx context.Context, host string) ([]byte, error) {
	client, err := e.dial(host, e.DialTimeout)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck // Connection teardown, nothing actionable

	type execResult struct {
		stdout   []byte
		stderr   []byte
		exitCode int
		err      error
	}

	done := make(chan execResult, 1)
	go func() {
		stdout, stderr, exitCode, err := client.Exec(e.Command)
		done <- execResult{stdout, stderr, exitCode, err}
	}()

	select {
	case <-ctx.Done():
		// Closing the connection unblocks the session; the in-flight
		// command on the remote is simply abandoned.
		client.Close() //nolint:errcheck
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrSSH,
			fmt.Sprintf("Timed out waiting for '%s'", host),
			"Host may be overloaded or the link is slow. Raise 'timeout:' if this persists.")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.exitCode != 0 {
			return nil, errors.New(errors.ErrExec,
				fmt.Sprintf("Command exited with code %d on '%s': %s", res.exitCode, host, e.Command),
				strings.TrimSpace(string(res.stderr)))
		}
		return res.stdout, nil
	}
}

// Dispatcher routes each roster entry to local subprocess execution or
// an SSH session by comparing it against the local identity.
type Dispatcher struct {
	Identity string
	Local    Executor
	Remote   Executor
}

// NewDispatcher builds the production executor for a config: local
// subprocess for the machine we're on, SSH for everything else.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		Identity: LocalIdentity(),
		Local:    &LocalExecutor{Command: cfg.Command},
		Remote:   NewSSHExecutor(cfg.Command, cfg.SSHTimeout),
	}
}

// Run dispatches to the executor for this host.
func (d *Dispatcher) Run(ctx context.Context, host string) ([]byte, error) {
	if MatchesIdentity(host, d.Identity) {
		return d.Local.Run(ctx, host)
	}
	return d.Remote.Run(ctx, host)
}
