// Package images provides image acquisition helpers around the runtime
// client: pulling, registry qualification, ECR authentication and one-shot
// command containers for image inspection.
package images

import (
	"context"

	"github.com/composekit/composekit/pkg/docker"
)

// Provider fetches and checks local presence of images.
type Provider interface {
	// Pull fetches an image from its registry.
	Pull(ctx context.Context, name string) error

	// Exists reports whether the image is present locally.
	Exists(ctx context.Context, name string) (bool, error)
}

// DockerProvider implements Provider on the runtime client.
type DockerProvider struct {
	client docker.Client
}

// NewDockerProvider returns a Provider backed by the given client.
func NewDockerProvider(client docker.Client) *DockerProvider {
	return &DockerProvider{client: client}
}

func (p *DockerProvider) Pull(ctx context.Context, name string) error {
	return p.client.PullImage(ctx, name, docker.PullOptions{})
}

func (p *DockerProvider) Exists(ctx context.Context, name string) (bool, error) {
	return p.client.ImageExists(ctx, name)
}

// EnsureImage pulls an image only when it is not already present locally.
func EnsureImage(ctx context.Context, provider Provider, name string) error {
	exists, err := provider.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return provider.Pull(ctx, name)
}
