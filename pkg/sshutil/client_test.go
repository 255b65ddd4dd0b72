package sshutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSettings_PlainHost(t *testing.T) {
	t.Setenv("LOADWATCH_TEST_SSH_USER", "")

	s := resolveSettings("vm-host-1")

	assert.Equal(t, "vm-host-1", s.hostname)
	assert.Equal(t, "22", s.port)
	assert.NotEmpty(t, s.user)
}

func TestResolveSettings_UserAtHost(t *testing.T) {
	s := resolveSettings("deploy@vm-host-1")

	assert.Equal(t, "deploy", s.user)
	assert.Equal(t, "vm-host-1", s.hostname)
	assert.Equal(t, "22", s.port)
}

func TestResolveSettings_HostWithPort(t *testing.T) {
	s := resolveSettings("vm-host-1:2222")

	assert.Equal(t, "vm-host-1", s.hostname)
	assert.Equal(t, "2222", s.port)
}

func TestResolveSettings_UserHostPort(t *testing.T) {
	s := resolveSettings("deploy@vm-host-1:2222")

	assert.Equal(t, "deploy", s.user)
	assert.Equal(t, "vm-host-1", s.hostname)
	assert.Equal(t, "2222", s.port)
}

func TestResolveSettings_ColonSuffixNotAPort(t *testing.T) {
	// IPv6-ish or otherwise non-numeric suffix must not be split off.
	s := resolveSettings("vm-host-1:abc")

	assert.Equal(t, "vm-host-1:abc", s.hostname)
	assert.Equal(t, "22", s.port)
}

func TestResolveSettings_TestUserOverride(t *testing.T) {
	t.Setenv("LOADWATCH_TEST_SSH_USER", "ci-runner")

	s := resolveSettings("vm-host-1")
	assert.Equal(t, "ci-runner", s.user)

	// Explicit user@host wins over the override.
	s = resolveSettings("deploy@vm-host-1")
	assert.Equal(t, "deploy", s.user)
}

func TestSettingsAddress(t *testing.T) {
	s := &settings{hostname: "vm-host-1", port: "2222"}
	assert.Equal(t, "vm-host-1:2222", s.address())
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, isAllDigits("22"))
	assert.True(t, isAllDigits("65535"))
	assert.False(t, isAllDigits(""))
	assert.False(t, isAllDigits("2a"))
	assert.False(t, isAllDigits("abc"))
}

func TestExpandHome(t *testing.T) {
	home := homeDir()
	assert.Equal(t, home+"/.ssh/id_test", expandHome("~/.ssh/id_test"))
	assert.Equal(t, "/etc/ssh/key", expandHome("/etc/ssh/key"))
}

func TestHostKeyMismatchError(t *testing.T) {
	err := &HostKeyMismatchError{
		Hostname:     "vm-host-1:22",
		ReceivedType: "ssh-ed25519",
		KnownHosts:   "/home/u/.ssh/known_hosts",
	}

	assert.Contains(t, err.Error(), "vm-host-1:22")
	assert.Contains(t, err.Error(), "ssh-ed25519")
	// Suggestion strips the port for the keyscan command.
	assert.Contains(t, err.Suggestion(), "ssh-keyscan")
	assert.Contains(t, err.Suggestion(), "ssh-keygen -R vm-host-1")
}

func TestEncryptedKeyError(t *testing.T) {
	err := &EncryptedKeyError{Path: "/home/u/.ssh/id_rsa"}
	assert.Contains(t, err.Error(), "/home/u/.ssh/id_rsa")
	assert.Contains(t, err.Error(), "encrypted")
}
