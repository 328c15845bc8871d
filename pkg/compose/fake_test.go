package compose

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/composekit/composekit/pkg/docker"
)

// fakeClient is an in-memory stand-in for the Docker daemon. It tracks
// containers and networks by name, honors label filters, and lets tests
// script failure modes.
type fakeClient struct {
	mu     sync.Mutex
	nextID int

	containers map[string]*fakeContainer // keyed by ID
	networks   map[string]docker.NetworkInfo
	images     map[string]bool

	// dieOnStart maps a container name to the exit code it dies with
	// immediately after StartContainer.
	dieOnStart map[string]int

	// logs maps a container name to canned log output.
	logs map[string]string

	// execOutput maps the first word of an exec command to canned output.
	execOutput map[string]string

	pulled []string
	auth   []string
}

type fakeContainer struct {
	info docker.ContainerInfo
	spec docker.ContainerSpec
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		containers: make(map[string]*fakeContainer),
		networks:   make(map[string]docker.NetworkInfo),
		images:     make(map[string]bool),
		dieOnStart: make(map[string]int),
		logs:       make(map[string]string),
		execOutput: make(map[string]string),
	}
}

func (f *fakeClient) byName(name string) *fakeContainer {
	for _, c := range f.containers {
		if c.info.Name == name {
			return c
		}
	}
	return nil
}

func (f *fakeClient) lookup(idOrName string) *fakeContainer {
	if c, ok := f.containers[idOrName]; ok {
		return c
	}
	return f.byName(idOrName)
}

func (f *fakeClient) CreateContainer(ctx context.Context, spec docker.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.byName(spec.Name) != nil {
		return "", docker.ErrContainerAlreadyExists
	}

	f.nextID++
	id := fmt.Sprintf("ctr%04d", f.nextID)
	f.containers[id] = &fakeContainer{
		spec: spec,
		info: docker.ContainerInfo{
			ID:        id,
			Name:      spec.Name,
			Image:     spec.Image,
			Status:    docker.ContainerStatusCreated,
			CreatedAt: time.Now(),
			Labels:    spec.Labels,
			Ports:     spec.Ports,
		},
	}
	return id, nil
}

func (f *fakeClient) StartContainer(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return docker.ErrContainerNotFound
	}
	if c.info.Status == docker.ContainerStatusRunning {
		return docker.ErrContainerAlreadyRunning
	}
	if code, dies := f.dieOnStart[c.info.Name]; dies {
		c.info.Status = docker.ContainerStatusExited
		c.info.ExitCode = code
		return nil
	}
	now := time.Now()
	c.info.Status = docker.ContainerStatusRunning
	c.info.StartedAt = &now
	return nil
}

func (f *fakeClient) StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return docker.ErrContainerNotFound
	}
	if c.info.Status != docker.ContainerStatusRunning {
		return docker.ErrContainerNotRunning
	}
	now := time.Now()
	c.info.Status = docker.ContainerStatusExited
	c.info.FinishedAt = &now
	return nil
}

func (f *fakeClient) RemoveContainer(ctx context.Context, containerID string, opts docker.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return docker.ErrContainerNotFound
	}
	delete(f.containers, c.info.ID)
	return nil
}

func (f *fakeClient) InspectContainer(ctx context.Context, containerID string) (*docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return nil, docker.ErrContainerNotFound
	}
	info := c.info
	return &info, nil
}

func (f *fakeClient) ListContainers(ctx context.Context, opts docker.ListOptions) ([]docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []docker.ContainerInfo
	for _, c := range f.containers {
		if !opts.All && c.info.Status != docker.ContainerStatusRunning {
			continue
		}
		if label, ok := opts.Filters["label"]; ok {
			key, val, _ := strings.Cut(label, "=")
			if c.info.Labels[key] != val {
				continue
			}
		}
		out = append(out, c.info)
	}
	return out, nil
}

func (f *fakeClient) ContainerLogs(ctx context.Context, containerID string, opts docker.LogOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return nil, docker.ErrContainerNotFound
	}
	return io.NopCloser(strings.NewReader(f.logs[c.info.Name])), nil
}

func (f *fakeClient) WaitContainer(ctx context.Context, containerID string) (int64, error) {
	f.mu.Lock()
	c := f.lookup(containerID)
	f.mu.Unlock()

	if c == nil {
		return 0, docker.ErrContainerNotFound
	}
	for {
		f.mu.Lock()
		status, code := c.info.Status, c.info.ExitCode
		f.mu.Unlock()
		if status == docker.ContainerStatusExited {
			return int64(code), nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (f *fakeClient) Exec(ctx context.Context, containerID string, cmd []string) (docker.ExecResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.lookup(containerID)
	if c == nil {
		return docker.ExecResult{}, docker.ErrContainerNotFound
	}
	if c.info.Status != docker.ContainerStatusRunning {
		return docker.ExecResult{}, docker.ErrContainerNotRunning
	}
	if len(cmd) > 0 {
		if out, ok := f.execOutput[cmd[0]]; ok {
			return docker.ExecResult{Output: []byte(out)}, nil
		}
	}
	return docker.ExecResult{Output: []byte("ok\n")}, nil
}

func (f *fakeClient) CreateNetwork(ctx context.Context, spec docker.NetworkSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.networks[spec.Name]; exists {
		return "", docker.ErrNetworkAlreadyExists
	}
	id := "net-" + spec.Name
	f.networks[spec.Name] = docker.NetworkInfo{
		ID:     id,
		Name:   spec.Name,
		Driver: spec.Driver,
		Labels: spec.Labels,
	}
	return id, nil
}

func (f *fakeClient) InspectNetwork(ctx context.Context, networkID string) (*docker.NetworkInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.networks {
		if n.ID == networkID || n.Name == networkID {
			info := n
			return &info, nil
		}
	}
	return nil, docker.ErrNetworkNotFound
}

func (f *fakeClient) RemoveNetwork(ctx context.Context, networkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, n := range f.networks {
		if n.ID == networkID || n.Name == networkID {
			delete(f.networks, name)
			return nil
		}
	}
	return docker.ErrNetworkNotFound
}

func (f *fakeClient) PullImage(ctx context.Context, image string, opts docker.PullOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulled = append(f.pulled, image)
	f.images[image] = true
	return nil
}

func (f *fakeClient) ImageExists(ctx context.Context, image string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[image], nil
}

func (f *fakeClient) RegistryLogin(ctx context.Context, username, password, serverAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, username+"@"+serverAddress)
	return nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Close() error { return nil }

var _ docker.Client = (*fakeClient)(nil)
