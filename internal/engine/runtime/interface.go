// Package runtime provides the Runtime interface for docking engine
// execution backends. Implementations include raw OS processes and Docker
// containers running an engine image.
package runtime

import (
	"context"
	"io"
)

// Runtime defines the interface for executing one engine invocation.
type Runtime interface {
	// Start begins execution and returns a handle.
	Start(ctx context.Context, opts StartOptions) (Handle, error)
}

// StartOptions contains the parameters for one engine invocation. The
// engine's combined output is written to LogPath as it runs; callers parse
// the log after Wait returns.
type StartOptions struct {
	Command []string
	WorkDir string
	LogPath string
	Env     map[string]string
}

// Handle represents a running engine invocation.
type Handle interface {
	// Wait blocks until the invocation completes.
	Wait(ctx context.Context) (ExitResult, error)

	// Stop forcefully terminates the invocation.
	Stop(ctx context.Context) error

	// StreamLogs returns a reader over the live engine output.
	StreamLogs(ctx context.Context) (io.ReadCloser, error)
}

// ExitResult holds the outcome of a finished invocation.
type ExitResult struct {
	ExitCode int
	Error    error
}
