package compose

import (
	"context"
	"errors"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Project Network
// =============================================================================

// ensureNetwork returns the project's network, creating it lazily. Concurrent
// orchestrators racing on the same project are tolerated by treating "already
// exists" from the create call as success and re-reading.
func (p *Project) ensureNetwork(ctx context.Context) (string, error) {
	name := NetworkName(p.name)

	info, err := p.client.InspectNetwork(ctx, name)
	if err == nil {
		return info.Name, nil
	}
	if !errors.Is(err, docker.ErrNetworkNotFound) {
		return "", err
	}

	_, err = p.client.CreateNetwork(ctx, docker.NetworkSpec{
		Name:   name,
		Driver: "bridge",
		Labels: map[string]string{LabelProject: p.name},
	})
	if err != nil {
		if errors.Is(err, docker.ErrNetworkAlreadyExists) {
			// Lost a create race; the network is there now.
			if info, err := p.client.InspectNetwork(ctx, name); err == nil {
				return info.Name, nil
			}
			return name, nil
		}
		return "", err
	}

	p.logger.Debug("created project network", "project", p.name, "network", name)
	return name, nil
}

// removeNetwork removes the project network, best-effort. Cleanup already
// done by a concurrent actor is not an error.
func (p *Project) removeNetwork(ctx context.Context) {
	name := NetworkName(p.name)
	if err := p.client.RemoveNetwork(ctx, name); err != nil {
		if !errors.Is(err, docker.ErrNetworkNotFound) {
			p.logger.Debug("network removal skipped", "network", name, "error", err)
		}
	}
}
