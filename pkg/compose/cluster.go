package compose

import (
	"context"
	"time"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Cluster
// =============================================================================

// Cluster wraps a Project with the coarse operations test harnesses want: a
// Start that always begins from a clean slate, a Shutdown that removes
// everything including volumes, and per-service queries.
type Cluster struct {
	name       string
	workingDir string
	configFile string
	client     docker.Client
	opts       []Option

	project *Project
}

// NewCluster loads the config file under workingDir and prepares a project
// named name. The config is re-read on every Start so edits between runs take
// effect.
func NewCluster(name, workingDir, configFile string, client docker.Client, opts ...Option) (*Cluster, error) {
	c := &Cluster{
		name:       name,
		workingDir: workingDir,
		configFile: configFile,
		client:     client,
		opts:       opts,
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cluster) reload() error {
	config, err := Load(c.workingDir, c.configFile)
	if err != nil {
		return err
	}
	c.project = NewProject(c.name, config, c.client, c.opts...)
	return nil
}

// Project exposes the underlying project for operations the cluster surface
// does not cover.
func (c *Cluster) Project() *Project {
	return c.project
}

// Start tears down any leftovers from a previous run, then brings up the named
// services (all services when none are given).
func (c *Cluster) Start(ctx context.Context, services ...string) error {
	if err := c.Shutdown(ctx); err != nil {
		return err
	}
	if err := c.reload(); err != nil {
		return err
	}
	return c.project.Up(ctx, services...)
}

// Shutdown stops and removes every project container, the project network and
// any anonymous volumes. Already-gone resources are not an error.
func (c *Cluster) Shutdown(ctx context.Context) error {
	if err := c.project.Down(ctx, DownOptions{RemoveVolumes: true}); err != nil {
		return err
	}
	return c.project.RemoveStopped(ctx)
}

// IsRunning reports whether every configured service has a running container.
func (c *Cluster) IsRunning(ctx context.Context) (bool, error) {
	for _, service := range c.project.config.ServiceNames() {
		running, err := c.IsServiceRunning(ctx, service)
		if err != nil {
			return false, err
		}
		if !running {
			return false, nil
		}
	}
	return true, nil
}

// IsServiceRunning reports whether a single service has a running container.
func (c *Cluster) IsServiceRunning(ctx context.Context, service string) (bool, error) {
	containers, err := c.project.Containers(ctx, ContainersOptions{Services: []string{service}})
	if err != nil {
		return false, err
	}
	return len(containers) > 0, nil
}

// GetContainer returns the container backing a service. With stopped set, a
// non-running container is returned as well.
func (c *Cluster) GetContainer(ctx context.Context, service string, stopped bool) (*Container, error) {
	if stopped {
		return c.project.findContainer(ctx, service)
	}
	return c.project.GetContainer(ctx, service)
}

// ExitCode returns the exit code of a service's container.
func (c *Cluster) ExitCode(ctx context.Context, service string) (int, error) {
	return c.project.ExitCode(ctx, service)
}

// Wait blocks until a service's container exits and returns its exit code.
func (c *Cluster) Wait(ctx context.Context, service string, timeout time.Duration) (int64, error) {
	return c.project.Wait(ctx, service, timeout)
}

// ServiceLogs returns the full log output of a service's container.
func (c *Cluster) ServiceLogs(ctx context.Context, service string) ([]byte, error) {
	return c.project.Logs(ctx, service)
}

// RunCommandOnService runs a command inside a service's container.
func (c *Cluster) RunCommandOnService(ctx context.Context, service, command string) ([]byte, error) {
	return c.project.RunCommand(ctx, service, command)
}

// RunCommandOnAll runs a command inside every running container, keyed by
// service name.
func (c *Cluster) RunCommandOnAll(ctx context.Context, command string) (map[string][]byte, error) {
	return c.project.RunCommandOnAll(ctx, command)
}
