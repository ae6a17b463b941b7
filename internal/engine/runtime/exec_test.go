package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewExecRuntime_DefaultWorkDir(t *testing.T) {
	rt := NewExecRuntime("")

	expected := filepath.Join(os.TempDir(), "dockflow", "runner")
	if rt.WorkDir != expected {
		t.Errorf("expected WorkDir to be %s, got %s", expected, rt.WorkDir)
	}
}

func TestNewExecRuntime_CustomWorkDir(t *testing.T) {
	customDir := "/custom/path"
	rt := NewExecRuntime(customDir)

	if rt.WorkDir != customDir {
		t.Errorf("expected WorkDir to be %s, got %s", customDir, rt.WorkDir)
	}
}

func TestStart_Success(t *testing.T) {
	dir := t.TempDir()
	rt := NewExecRuntime(dir)

	ctx := context.Background()
	handle, err := rt.Start(ctx, StartOptions{
		Command: []string{"echo", "mode |   affinity"},
		WorkDir: dir,
		LogPath: filepath.Join(dir, "out.log"),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	result, err := handle.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "affinity") {
		t.Errorf("expected output captured in log, got %q", string(data))
	}
}

func TestStart_EmptyCommand(t *testing.T) {
	dir := t.TempDir()
	rt := NewExecRuntime(dir)

	_, err := rt.Start(context.Background(), StartOptions{
		Command: []string{},
		LogPath: filepath.Join(dir, "out.log"),
	})
	if err == nil {
		t.Fatal("expected error for empty command")
	}
	if !strings.Contains(err.Error(), "command is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStart_CommandNotFound(t *testing.T) {
	dir := t.TempDir()
	rt := NewExecRuntime(dir)

	_, err := rt.Start(context.Background(), StartOptions{
		Command: []string{"nonexistent-binary-xyz"},
		LogPath: filepath.Join(dir, "out.log"),
	})
	if err == nil {
		t.Fatal("expected error for non-existent command")
	}
}

func TestWait_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	rt := NewExecRuntime(dir)

	ctx := context.Background()
	handle, err := rt.Start(ctx, StartOptions{
		Command: []string{"sh", "-c", "exit 3"},
		LogPath: filepath.Join(dir, "out.log"),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	result, err := handle.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if result.Error == nil {
		t.Error("expected result.Error for non-zero exit")
	}
}

func TestStreamLogs(t *testing.T) {
	dir := t.TempDir()
	rt := NewExecRuntime(dir)

	ctx := context.Background()
	handle, err := rt.Start(ctx, StartOptions{
		Command: []string{"echo", "stars ***"},
		LogPath: filepath.Join(dir, "out.log"),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := handle.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	rc, err := handle.StreamLogs(ctx)
	if err != nil {
		t.Fatalf("StreamLogs failed: %v", err)
	}
	defer rc.Close()

	buf := make([]byte, 64)
	n, _ := rc.Read(buf)
	if !strings.Contains(string(buf[:n]), "***") {
		t.Errorf("expected log content, got %q", string(buf[:n]))
	}
}
