package docker

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func skipIfNoDocker(t *testing.T) Client {
	t.Helper()
	cli, err := NewDockerClient("")
	if err != nil {
		t.Skip("Docker not available:", err)
	}
	if err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skip("Docker not reachable:", err)
	}
	return cli
}

func cleanupContainer(t *testing.T, cli Client, containerID string) {
	t.Helper()
	ctx := context.Background()
	timeout := 5 * time.Second
	cli.StopContainer(ctx, containerID, &timeout)
	cli.RemoveContainer(ctx, containerID, RemoveOptions{Force: true, RemoveVolumes: true})
}

func cleanupNetwork(t *testing.T, cli Client, networkID string) {
	t.Helper()
	cli.RemoveNetwork(context.Background(), networkID)
}

// Test container name prefix to identify test containers
const testPrefix = "composekit-test-"

// =============================================================================
// Connection Tests
// =============================================================================

func TestNewDockerClient_Success(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	assert.NotNil(t, cli)
}

func TestPing_Success(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	assert.NoError(t, cli.Ping(context.Background()))
}

// =============================================================================
// Container Lifecycle Tests
// =============================================================================

func TestCreateContainer_Minimal(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	containerID, err := cli.CreateContainer(context.Background(), ContainerSpec{
		Name:  testPrefix + "minimal",
		Image: "alpine:latest",
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	assert.NotEmpty(t, containerID)
}

func TestCreateContainer_DuplicateName(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	spec := ContainerSpec{Name: testPrefix + "dup", Image: "alpine:latest"}

	containerID, err := cli.CreateContainer(ctx, spec)
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	_, err = cli.CreateContainer(ctx, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContainerAlreadyExists)
}

func TestStartStopContainer(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:    testPrefix + "startstop",
		Image:   "alpine:latest",
		Command: []string{"sleep", "60"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	require.NoError(t, cli.StartContainer(ctx, containerID))

	info, err := cli.InspectContainer(ctx, containerID)
	require.NoError(t, err)
	assert.True(t, info.Running())

	timeout := 2 * time.Second
	require.NoError(t, cli.StopContainer(ctx, containerID, &timeout))

	info, err = cli.InspectContainer(ctx, containerID)
	require.NoError(t, err)
	assert.False(t, info.Running())
}

func TestInspectContainer_ByName(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	name := testPrefix + "byname"
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{Name: name, Image: "alpine:latest"})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	info, err := cli.InspectContainer(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, containerID, info.ID)
	assert.Equal(t, name, info.Name)
}

func TestInspectContainer_NotFound(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	_, err := cli.InspectContainer(context.Background(), testPrefix+"does-not-exist")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestListContainers_LabelFilter(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:   testPrefix + "labeled",
		Image:  "alpine:latest",
		Labels: map[string]string{"composekit.test": "listing"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	infos, err := cli.ListContainers(ctx, ListOptions{
		All:     true,
		Filters: map[string]string{"label": "composekit.test=listing"},
	})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, containerID, infos[0].ID)
}

func TestWaitContainer_ExitCode(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:    testPrefix + "wait",
		Image:   "alpine:latest",
		Command: []string{"sh", "-c", "exit 3"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	require.NoError(t, cli.StartContainer(ctx, containerID))

	code, err := cli.WaitContainer(ctx, containerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), code)
}

func TestContainerLogs(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:    testPrefix + "logs",
		Image:   "alpine:latest",
		Command: []string{"echo", "log output here"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	require.NoError(t, cli.StartContainer(ctx, containerID))
	_, err = cli.WaitContainer(ctx, containerID)
	require.NoError(t, err)

	reader, err := cli.ContainerLogs(ctx, containerID, LogOptions{Tail: "all"})
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log output here")
}

func TestExec_Output(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:    testPrefix + "exec",
		Image:   "alpine:latest",
		Command: []string{"sleep", "60"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	require.NoError(t, cli.StartContainer(ctx, containerID))

	result, err := cli.Exec(ctx, containerID, []string{"echo", "from exec"})
	require.NoError(t, err)
	assert.Contains(t, string(result.Output), "from exec")
	assert.Equal(t, 0, result.ExitCode)
}

func TestExec_NonzeroExitIsNotAnError(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	containerID, err := cli.CreateContainer(ctx, ContainerSpec{
		Name:    testPrefix + "exec-fail",
		Image:   "alpine:latest",
		Command: []string{"sleep", "60"},
	})
	require.NoError(t, err)
	defer cleanupContainer(t, cli, containerID)

	require.NoError(t, cli.StartContainer(ctx, containerID))

	result, err := cli.Exec(ctx, containerID, []string{"sh", "-c", "exit 2"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExitCode)
}

// =============================================================================
// Network Tests
// =============================================================================

func TestNetworkLifecycle(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	ctx := context.Background()
	name := testPrefix + "net"

	networkID, err := cli.CreateNetwork(ctx, NetworkSpec{
		Name:   name,
		Driver: "bridge",
		Labels: map[string]string{"composekit.test": "network"},
	})
	require.NoError(t, err)
	defer cleanupNetwork(t, cli, networkID)

	info, err := cli.InspectNetwork(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, info.Name)

	_, err = cli.CreateNetwork(ctx, NetworkSpec{Name: name})
	assert.ErrorIs(t, err, ErrNetworkAlreadyExists)

	require.NoError(t, cli.RemoveNetwork(ctx, networkID))

	_, err = cli.InspectNetwork(ctx, name)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestInspectNetwork_NotFound(t *testing.T) {
	cli := skipIfNoDocker(t)
	defer cli.Close()

	_, err := cli.InspectNetwork(context.Background(), testPrefix+"ghost-net")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}
