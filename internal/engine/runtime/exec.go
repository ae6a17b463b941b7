package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ExecRuntime implements the Runtime interface using raw OS processes. This
// is the default: the docking engine is a local binary.
type ExecRuntime struct {
	WorkDir string
}

// NewExecRuntime creates a new process-based runtime. An empty workDir falls
// back to a per-user temp location.
func NewExecRuntime(workDir string) *ExecRuntime {
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "dockflow", "runner")
	}
	return &ExecRuntime{WorkDir: workDir}
}

// Start implements Runtime.Start using os/exec. Stdout and stderr both go to
// the log file, matching what the engine writes when invoked by hand.
func (e *ExecRuntime) Start(ctx context.Context, opts StartOptions) (Handle, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("command is required")
	}
	if err := os.MkdirAll(e.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime workdir: %w", err)
	}

	logFile, err := os.Create(opts.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", opts.LogPath, err)
	}

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.WorkDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to start %s: %w", opts.Command[0], err)
	}

	return &ExecHandle{cmd: cmd, logFile: logFile, logPath: opts.LogPath}, nil
}

// ExecHandle represents a running process.
type ExecHandle struct {
	cmd     *exec.Cmd
	logFile *os.File
	logPath string
}

// Wait blocks until the process exits and reports its exit code.
func (h *ExecHandle) Wait(ctx context.Context) (ExitResult, error) {
	err := h.cmd.Wait()
	h.logFile.Close()

	if err == nil {
		return ExitResult{ExitCode: 0}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitResult{ExitCode: exitErr.ExitCode(), Error: err}, nil
	}
	return ExitResult{ExitCode: -1, Error: err}, err
}

// Stop kills the process.
func (h *ExecHandle) Stop(ctx context.Context) error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// StreamLogs opens the live log file for reading.
func (h *ExecHandle) StreamLogs(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(h.logPath)
}
