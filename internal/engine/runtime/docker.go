package runtime

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// DockerRuntime implements the Runtime interface using the Docker SDK. The
// engine runs inside a container with the docking workspace bind-mounted at
// its host path, so command arguments carry host paths unchanged.
type DockerRuntime struct {
	client *client.Client
	image  string
}

// DockerHandle represents a running container.
type DockerHandle struct {
	client      *client.Client
	containerID string
	logPath     string
}

func mapToEnvList(m map[string]string) []string {
	var env []string
	for k, v := range m {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}

// NewDockerRuntime creates a new Docker-based runtime running the given
// engine image.
func NewDockerRuntime(engineImage string) (*DockerRuntime, error) {
	// Initializes client from standard environment variables (DOCKER_HOST, etc.)
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerRuntime{client: cli, image: engineImage}, nil
}

// Start implements Runtime.Start using Docker containers.
func (d *DockerRuntime) Start(ctx context.Context, opts StartOptions) (Handle, error) {
	// Check if the image exists locally first to save time.
	_, err := d.client.ImageInspect(ctx, d.image)
	if err != nil {
		reader, err := d.client.ImagePull(ctx, d.image, image.PullOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", d.image, err)
		}
		defer reader.Close()
		io.Copy(io.Discard, reader)
	}

	containerConfig := &container.Config{
		Image:      d.image,
		Cmd:        opts.Command,
		Env:        mapToEnvList(opts.Env),
		WorkingDir: opts.WorkDir,
		Tty:        true,
	}
	hostConfig := &container.HostConfig{
		Binds: []string{fmt.Sprintf("%s:%s", opts.WorkDir, opts.WorkDir)},
	}
	containerResponse, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, containerResponse.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	return &DockerHandle{
		client:      d.client,
		containerID: containerResponse.ID,
		logPath:     opts.LogPath,
	}, nil
}

// Wait blocks until the container stops, then writes its combined output to
// the log file so parsing works the same as with the exec runtime.
func (h *DockerHandle) Wait(ctx context.Context) (ExitResult, error) {
	statusCh, errCh := h.client.ContainerWait(ctx, h.containerID, container.WaitConditionNotRunning)

	var result ExitResult
	select {
	case err := <-errCh:
		return ExitResult{ExitCode: -1, Error: err}, err
	case status := <-statusCh:
		result = ExitResult{ExitCode: int(status.StatusCode)}
		if status.Error != nil {
			result.Error = fmt.Errorf("%s", status.Error.Message)
		}
	case <-ctx.Done():
		return ExitResult{ExitCode: -1, Error: ctx.Err()}, ctx.Err()
	}

	if err := h.dumpLogs(ctx); err != nil {
		return result, err
	}
	return result, nil
}

func (h *DockerHandle) dumpLogs(ctx context.Context) error {
	rc, err := h.client.ContainerLogs(ctx, h.containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch container logs: %w", err)
	}
	defer rc.Close()

	f, err := os.Create(h.logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file %s: %w", h.logPath, err)
	}
	defer f.Close()

	// Tty is set on the container, so the stream is raw (not multiplexed).
	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("failed to write container logs: %w", err)
	}
	return nil
}

// Stop stops the container.
func (h *DockerHandle) Stop(ctx context.Context) error {
	timeOut := 5
	return h.client.ContainerStop(ctx, h.containerID, container.StopOptions{Timeout: &timeOut})
}

// StreamLogs follows the container's live output.
func (h *DockerHandle) StreamLogs(ctx context.Context) (io.ReadCloser, error) {
	return h.client.ContainerLogs(ctx, h.containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
}
