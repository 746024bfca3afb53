package executor

import (
	"context"
	"os"
)

// Result is the raw shape of a finished external call: exactly what the
// outcome classifier consumes. The zero ExitCode alone is never trusted;
// classification prefers the tool's own payload in Stdout.
type Result struct {
	Cmd      string
	ExitCode int
	Signal   string
	Stdout   string
	Stderr   string
}

// Executor runs external commands and stages files on a target system,
// which may be the local machine or a remote host.
type Executor interface {
	// Execute runs a command. The returned error is reserved for adapter
	// failures (the process could not be spawned at all); a non-zero exit
	// code is reported through the Result, not the error.
	Execute(ctx context.Context, command string, args ...string) (*Result, error)

	// UploadFile stages a local file onto the target system, creating
	// parent directories as needed.
	UploadFile(ctx context.Context, localPath, targetPath string, permissions os.FileMode) error

	// Close releases any held connections.
	Close() error
}
