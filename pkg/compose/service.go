package compose

import (
	"context"
	"errors"
	"io"

	"github.com/composekit/composekit/pkg/docker"
)

// startupLogTailLines and startupLogTailBytes bound the log excerpt attached
// to a StartupError.
const (
	startupLogTailLines = "50"
	startupLogTailBytes = 500
)

// =============================================================================
// Service Lifecycle
// =============================================================================

// startService drives one service through absent → created → running. It is
// idempotent: an existing container under the deterministic name is reused
// (and started when stopped) instead of recreated.
func (p *Project) startService(ctx context.Context, service string) (*Container, error) {
	name := ContainerName(p.name, service)

	// Reuse an existing container if one holds the deterministic name.
	existing, err := p.client.InspectContainer(ctx, name)
	if err == nil {
		return p.adoptContainer(ctx, service, existing)
	}
	if !errors.Is(err, docker.ErrContainerNotFound) {
		return nil, err
	}

	// Validation happens before any runtime mutation: a failure here never
	// leaves a partial container behind.
	svc, err := p.config.Service(service)
	if err != nil {
		return nil, err
	}
	params, err := translateService(service, svc, p.config.WorkingDir, p.lookup)
	if err != nil {
		return nil, err
	}

	spec := docker.ContainerSpec{
		Name:       name,
		Image:      params.image,
		Command:    params.command,
		Entrypoint: params.entrypoint,
		Env:        params.env,
		Ports:      params.ports,
		Mounts:     params.mounts,
		WorkingDir: params.workingDir,
		User:       params.user,
		TTY:        params.tty,
		Labels: map[string]string{
			LabelProject: p.name,
			LabelService: service,
		},
	}

	if params.networkMode != "" {
		// An explicit network mode bypasses the project network entirely and
		// leaves the hostname to the daemon.
		spec.NetworkMode = params.networkMode
	} else {
		networkName, err := p.ensureNetwork(ctx)
		if err != nil {
			return nil, err
		}
		spec.Networks = []string{networkName}
		spec.NetworkAliases = map[string][]string{networkName: {service}}
		spec.Hostname = params.hostname
		if spec.Hostname == "" {
			// Services address each other by service name over the project
			// network.
			spec.Hostname = service
		}
	}

	id, err := p.client.CreateContainer(ctx, spec)
	if err != nil {
		if errors.Is(err, docker.ErrContainerAlreadyExists) {
			// Lost a create race on the deterministic name; the container is
			// there now, so adopt it like any other existing container.
			existing, inspectErr := p.client.InspectContainer(ctx, name)
			if inspectErr != nil {
				return nil, inspectErr
			}
			return p.adoptContainer(ctx, service, existing)
		}
		return nil, err
	}
	p.logger.Debug("created container", "project", p.name, "service", service, "container", name)

	if err := p.client.StartContainer(ctx, id); err != nil {
		return nil, err
	}

	// Single point-in-time check, deliberately not a poll loop: callers that
	// need slow-starting services layer their own readiness wait on top.
	info, err := p.client.InspectContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !info.Running() {
		return nil, &StartupError{
			Service:   service,
			Container: name,
			Status:    string(info.Status),
			LogTail:   p.logTail(ctx, id),
		}
	}

	p.logger.Info("service started", "project", p.name, "service", service, "container", name)
	return newContainer(p.client, p.name, *info), nil
}

// adoptContainer takes ownership of a container that already holds a
// service's deterministic name, starting it when stopped.
func (p *Project) adoptContainer(ctx context.Context, service string, info *docker.ContainerInfo) (*Container, error) {
	if !info.Running() {
		if startErr := p.client.StartContainer(ctx, info.ID); startErr != nil &&
			!errors.Is(startErr, docker.ErrContainerAlreadyRunning) {
			return nil, startErr
		}
		var err error
		info, err = p.client.InspectContainer(ctx, info.ID)
		if err != nil {
			return nil, err
		}
	}
	p.logger.Debug("reusing container", "project", p.name, "service", service, "container", info.Name)
	return newContainer(p.client, p.name, *info), nil
}

// logTail fetches a bounded excerpt of a container's logs for startup
// diagnostics. Failures degrade to an empty excerpt.
func (p *Project) logTail(ctx context.Context, containerID string) string {
	reader, err := p.client.ContainerLogs(ctx, containerID, docker.LogOptions{Tail: startupLogTailLines})
	if err != nil {
		return ""
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil && len(data) == 0 {
		return ""
	}
	if len(data) > startupLogTailBytes {
		data = data[len(data)-startupLogTailBytes:]
	}
	return string(data)
}
