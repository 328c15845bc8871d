package compose

import (
	"context"
	"fmt"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Project Registry
// =============================================================================

// ContainersOptions filters a project container query.
type ContainersOptions struct {
	// Services restricts the result to containers of the named services.
	Services []string

	// Stopped includes containers in any status, not just running ones.
	Stopped bool
}

// Containers discovers the project's containers from the runtime's label
// store. Membership is answered by a fresh query every time; there is no
// in-memory registry to drift from reality.
func (p *Project) Containers(ctx context.Context, opts ContainersOptions) ([]*Container, error) {
	filters := map[string]string{
		"label": fmt.Sprintf("%s=%s", LabelProject, p.name),
	}
	if !opts.Stopped {
		filters["status"] = string(docker.ContainerStatusRunning)
	}

	infos, err := p.client.ListContainers(ctx, docker.ListOptions{
		All:     opts.Stopped,
		Filters: filters,
	})
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if len(opts.Services) > 0 {
		wanted = make(map[string]bool, len(opts.Services))
		for _, s := range opts.Services {
			wanted[s] = true
		}
	}

	containers := make([]*Container, 0, len(infos))
	for _, info := range infos {
		c := newContainer(p.client, p.name, info)
		if wanted != nil && !wanted[c.ServiceName()] {
			continue
		}
		containers = append(containers, c)
	}
	return containers, nil
}
