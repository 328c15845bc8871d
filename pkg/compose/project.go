package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Project Facade
// =============================================================================

// Project manages a named group of services as a unit. It keeps no container
// table of its own: group membership is rebuilt from runtime labels on every
// call, so the runtime stays the single source of truth even when other
// actors mutate it.
type Project struct {
	name        string
	config      *Config
	client      docker.Client
	logger      *slog.Logger
	stopTimeout time.Duration
	lookup      LookupFunc
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the project's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) { p.logger = logger }
}

// WithStopTimeout sets how long a container is given to stop before it is
// killed.
func WithStopTimeout(d time.Duration) Option {
	return func(p *Project) { p.stopTimeout = d }
}

// WithEnvLookup overrides process-environment resolution for bare environment
// entries. Tests use this to pin the environment.
func WithEnvLookup(lookup LookupFunc) Option {
	return func(p *Project) { p.lookup = lookup }
}

// NewProject creates a project over an injected runtime client. The client is
// shared, never owned: closing it is the caller's responsibility.
func NewProject(name string, config *Config, client docker.Client, opts ...Option) *Project {
	p := &Project{
		name:        name,
		config:      config,
		client:      client,
		logger:      slog.Default(),
		stopTimeout: 10 * time.Second,
		lookup:      os.LookupEnv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the project name.
func (p *Project) Name() string {
	return p.name
}

// Up ensures the project network exists and starts the requested services,
// defaulting to every declared service, in the order given. No dependency
// ordering is performed. Up is idempotent: services whose container already
// exists are reused, not duplicated.
func (p *Project) Up(ctx context.Context, services ...string) error {
	if len(services) == 0 {
		services = p.config.ServiceNames()
	}

	p.logger.Info("bringing project up", "project", p.name, "services", services)

	for _, name := range services {
		if _, err := p.startService(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// DownOptions configures project teardown.
type DownOptions struct {
	// RemoveVolumes also removes anonymous volumes attached to the
	// containers.
	RemoveVolumes bool
}

// Down stops and force-removes every project container, then removes the
// project network. Teardown is best-effort and idempotent: a project already
// partially or fully torn down never causes an error.
func (p *Project) Down(ctx context.Context, opts DownOptions) error {
	containers, err := p.Containers(ctx, ContainersOptions{Stopped: true})
	if err != nil {
		return err
	}

	p.logger.Info("tearing project down", "project", p.name, "containers", len(containers))

	for _, c := range containers {
		c.Stop(ctx, p.stopTimeout)
		c.Remove(ctx, docker.RemoveOptions{Force: true, RemoveVolumes: opts.RemoveVolumes})
	}

	p.removeNetwork(ctx)
	return nil
}

// RemoveStopped removes project containers that are not currently running.
func (p *Project) RemoveStopped(ctx context.Context) error {
	containers, err := p.Containers(ctx, ContainersOptions{Stopped: true})
	if err != nil {
		return err
	}
	for _, c := range containers {
		running, err := c.Running(ctx)
		if err != nil || running {
			continue
		}
		c.Remove(ctx, docker.RemoveOptions{Force: true})
	}
	return nil
}

// GetContainer returns the running container for a service. It fails with
// ErrServiceNotRunning when none matches.
func (p *Project) GetContainer(ctx context.Context, service string) (*Container, error) {
	containers, err := p.Containers(ctx, ContainersOptions{Services: []string{service}})
	if err != nil {
		return nil, err
	}
	if len(containers) == 0 {
		return nil, fmt.Errorf("%q: %w", service, ErrServiceNotRunning)
	}
	return containers[0], nil
}

// ExitCode returns the exit code of a service's container. The container is
// looked up across all statuses so exited containers can be inspected.
func (p *Project) ExitCode(ctx context.Context, service string) (int, error) {
	c, err := p.findContainer(ctx, service)
	if err != nil {
		return 0, err
	}
	return c.ExitCode(ctx)
}

// Wait blocks until a service's container stops running and returns its exit
// code. A zero timeout waits indefinitely. A container that has already
// exited yields its exit code immediately.
func (p *Project) Wait(ctx context.Context, service string, timeout time.Duration) (int64, error) {
	c, err := p.findContainer(ctx, service)
	if err != nil {
		return 0, err
	}

	running, err := c.Running(ctx)
	if err != nil {
		return 0, err
	}
	if !running {
		code, err := c.ExitCode(ctx)
		return int64(code), err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.Wait(ctx)
}

// Logs returns the log output of a service's running container.
func (p *Project) Logs(ctx context.Context, service string) ([]byte, error) {
	c, err := p.GetContainer(ctx, service)
	if err != nil {
		return nil, err
	}
	return c.Logs(ctx)
}

// RunCommand execs a command inside a service's container and returns its raw
// combined output.
func (p *Project) RunCommand(ctx context.Context, service, command string) ([]byte, error) {
	c, err := p.GetContainer(ctx, service)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("running command", "project", p.name, "service", service, "command", command)
	return c.Exec(ctx, command)
}

// RunCommandOnAll execs a command in every running project container and
// returns the outputs keyed by derived service name.
func (p *Project) RunCommandOnAll(ctx context.Context, command string) (map[string][]byte, error) {
	containers, err := p.Containers(ctx, ContainersOptions{})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(containers))
	for _, c := range containers {
		output, err := c.Exec(ctx, command)
		if err != nil {
			return nil, fmt.Errorf("exec on %s: %w", c.Name(), err)
		}
		out[c.ServiceName()] = output
	}
	return out, nil
}

// findContainer locates a service's container across all statuses, so it
// works for exited containers too.
func (p *Project) findContainer(ctx context.Context, service string) (*Container, error) {
	containers, err := p.Containers(ctx, ContainersOptions{Services: []string{service}, Stopped: true})
	if err != nil {
		return nil, err
	}
	if len(containers) == 0 {
		return nil, fmt.Errorf("%q: %w", service, ErrServiceNotRunning)
	}
	return containers[0], nil
}
