// Package docker is the runtime control surface: a thin, typed client for the
// Docker Engine API covering the container, network, and image operations the
// orchestration engine needs.
package docker

import (
	"context"
	"io"
	"time"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating a container.
type ContainerSpec struct {
	Name       string
	Image      string
	Command    []string
	Entrypoint []string
	Env        map[string]string
	Labels     map[string]string
	Ports      []PortBinding
	Mounts     []Mount

	// NetworkMode, when set, bypasses project networking entirely
	// (e.g. "host", "none", "container:<id>").
	NetworkMode string

	// Networks lists networks to attach at create time. NetworkAliases maps a
	// network name to extra DNS aliases for the container on that network.
	Networks       []string
	NetworkAliases map[string][]string

	Hostname   string
	WorkingDir string
	User       string
	TTY        bool
}

// PortBinding defines a single container port and its optional host binding.
type PortBinding struct {
	ContainerPort int
	Protocol      string // "tcp" or "udp"; empty means tcp

	// Bind reports whether the port is published to the host at all. When
	// false the port is only exposed. HostPort 0 with Bind set means the
	// daemon assigns an ephemeral host port.
	Bind     bool
	HostIP   string
	HostPort int

	// HostRange carries the host segment verbatim when it is not a single
	// numeric port (e.g. "8080-8090"). It takes precedence over HostPort.
	HostRange string
}

// Mount defines a bind mount or named volume mount. Sources starting with "/"
// are bind mounts; anything else is treated as a named volume.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// =============================================================================
// Container Info
// =============================================================================

// ContainerStatus represents the container status as reported by the daemon.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerInfo contains point-in-time information about a container.
type ContainerInfo struct {
	ID         string
	Name       string
	Image      string
	Status     ContainerStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Ports      []PortBinding
	Labels     map[string]string
	ExitCode   int
}

// Running reports whether the container was running at observation time.
func (c ContainerInfo) Running() bool {
	return c.Status == ContainerStatusRunning
}

// =============================================================================
// Network Types
// =============================================================================

// NetworkSpec defines the specification for creating a network.
type NetworkSpec struct {
	Name   string
	Driver string // defaults to "bridge"
	Labels map[string]string
}

// NetworkInfo contains information about an existing network.
type NetworkInfo struct {
	ID     string
	Name   string
	Driver string
	Labels map[string]string
}

// =============================================================================
// Options
// =============================================================================

// RemoveOptions defines options for removing containers.
type RemoveOptions struct {
	Force         bool
	RemoveVolumes bool
}

// ListOptions defines options for listing containers.
type ListOptions struct {
	All     bool              // include stopped containers
	Filters map[string]string // e.g. {"label": "com.docker.compose.project=myproj"}
}

// LogOptions defines options for fetching container logs.
type LogOptions struct {
	Follow     bool
	Tail       string // "all" or a number of lines
	Since      time.Time
	Until      time.Time
	Timestamps bool
}

// PullOptions defines options for pulling images.
type PullOptions struct {
	Platform     string // e.g. "linux/amd64"
	RegistryAuth string // base64-encoded auth config, if required
}

// ExecResult holds the outcome of a command executed inside a container.
// Output is the combined stdout and stderr.
type ExecResult struct {
	Output   []byte
	ExitCode int
}

// =============================================================================
// Client Interface
// =============================================================================

// Client is the runtime control surface consumed by the orchestration engine.
// Implementations must be safe to share: the engine re-reads runtime state on
// every call and holds no state of its own.
type Client interface {
	// Container operations
	CreateContainer(ctx context.Context, spec ContainerSpec) (containerID string, err error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error
	RemoveContainer(ctx context.Context, containerID string, opts RemoveOptions) error
	// InspectContainer accepts a container ID or name.
	InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error)
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)
	ContainerLogs(ctx context.Context, containerID string, opts LogOptions) (io.ReadCloser, error)
	// WaitContainer blocks until the container stops running and returns its
	// exit code. Cancellation and deadlines come from ctx.
	WaitContainer(ctx context.Context, containerID string) (int64, error)
	// Exec runs a command inside a running container and returns its combined
	// output. A nonzero command exit code is not an error.
	Exec(ctx context.Context, containerID string, cmd []string) (ExecResult, error)

	// Network operations
	CreateNetwork(ctx context.Context, spec NetworkSpec) (networkID string, err error)
	// InspectNetwork accepts a network ID or name.
	InspectNetwork(ctx context.Context, networkID string) (*NetworkInfo, error)
	RemoveNetwork(ctx context.Context, networkID string) error

	// Image operations
	PullImage(ctx context.Context, image string, opts PullOptions) error
	ImageExists(ctx context.Context, image string) (bool, error)
	RegistryLogin(ctx context.Context, username, password, serverAddress string) error

	// Health operations
	Ping(ctx context.Context) error
	Close() error
}
