package sshutil

// Runner is the remote command-execution capability loadwatch depends on.
// The real Client implements it over SSH; tests substitute fakes so no
// network is needed.
type Runner interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the SSH connection.
	Close() error
}
