package compose

import (
	"context"
	"fmt"
	"io"
	"time"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Container Handle
// =============================================================================

// Container is a transient view of one runtime container. It never owns
// runtime state: derived attributes such as Running are recomputed on every
// query rather than cached across calls.
type Container struct {
	client  docker.Client
	project string
	info    docker.ContainerInfo
}

func newContainer(client docker.Client, project string, info docker.ContainerInfo) *Container {
	return &Container{client: client, project: project, info: info}
}

// ID returns the runtime container ID.
func (c *Container) ID() string {
	return c.info.ID
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.info.Name
}

// ServiceName returns the service this container belongs to, derived from the
// service label, falling back to parsing the deterministic container name.
func (c *Container) ServiceName() string {
	if svc, ok := c.info.Labels[LabelService]; ok && svc != "" {
		return svc
	}
	return ServiceNameFromContainer(c.project, c.info.Name)
}

// Running re-queries the runtime and reports whether the container is
// currently running.
func (c *Container) Running(ctx context.Context) (bool, error) {
	info, err := c.client.InspectContainer(ctx, c.info.ID)
	if err != nil {
		return false, err
	}
	c.info = *info
	return info.Running(), nil
}

// ExitCode re-queries the runtime and returns the container's exit code. It
// fails with ErrNotExited unless the container status is "exited".
func (c *Container) ExitCode(ctx context.Context) (int, error) {
	info, err := c.client.InspectContainer(ctx, c.info.ID)
	if err != nil {
		return 0, err
	}
	c.info = *info
	if info.Status != docker.ContainerStatusExited {
		return 0, fmt.Errorf("%s is %s: %w", c.info.Name, info.Status, ErrNotExited)
	}
	return info.ExitCode, nil
}

// Logs returns the container's full log output.
func (c *Container) Logs(ctx context.Context) ([]byte, error) {
	reader, err := c.client.ContainerLogs(ctx, c.info.ID, docker.LogOptions{Tail: "all"})
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// Exec runs a shell-style command line inside the container and returns its
// combined output. The command's own exit code is not treated as an error.
func (c *Container) Exec(ctx context.Context, command string) ([]byte, error) {
	cmd, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("cannot parse command %q: %w", command, err)
	}
	result, err := c.client.Exec(ctx, c.info.ID, cmd)
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// Wait blocks until the container stops running and returns its exit code.
func (c *Container) Wait(ctx context.Context) (int64, error) {
	return c.client.WaitContainer(ctx, c.info.ID)
}

// Start starts the container if it is not running.
func (c *Container) Start(ctx context.Context) error {
	return c.client.StartContainer(ctx, c.info.ID)
}

// Stop stops the container. A container already stopped or already removed by
// a concurrent actor is not an error: teardown is best-effort.
func (c *Container) Stop(ctx context.Context, timeout time.Duration) {
	_ = c.client.StopContainer(ctx, c.info.ID, &timeout)
}

// Remove removes the container, best-effort.
func (c *Container) Remove(ctx context.Context, opts docker.RemoveOptions) {
	_ = c.client.RemoveContainer(ctx, c.info.ID, opts)
}
