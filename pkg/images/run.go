package images

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/composekit/composekit/pkg/docker"
)

// LabelOneShot marks containers created by RunCommand so leftovers from
// interrupted runs can be identified.
const LabelOneShot = "com.composekit.oneshot"

// RunSpec describes a one-shot command container.
type RunSpec struct {
	Image   string
	Command []string
	Env     map[string]string
	Mounts  []docker.Mount
	User    string

	// Timeout bounds the wait for the command to exit. Zero means no bound
	// beyond the caller's context.
	Timeout time.Duration
}

// RunResult carries the combined output and exit code of a one-shot run.
type RunResult struct {
	Output   []byte
	ExitCode int
}

// RunCommand runs a command in a fresh container of the given image and
// returns its output and exit code. The image is pulled when missing and the
// container is removed afterwards regardless of outcome.
func RunCommand(ctx context.Context, client docker.Client, spec RunSpec) (*RunResult, error) {
	if err := EnsureImage(ctx, NewDockerProvider(client), spec.Image); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_cmd_%s", sanitizeName(spec.Image), uuid.NewString()[:8])
	id, err := client.CreateContainer(ctx, docker.ContainerSpec{
		Name:    name,
		Image:   spec.Image,
		Command: spec.Command,
		Env:     spec.Env,
		Mounts:  spec.Mounts,
		User:    spec.User,
		Labels:  map[string]string{LabelOneShot: "true"},
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = client.RemoveContainer(context.WithoutCancel(ctx), id, docker.RemoveOptions{Force: true, RemoveVolumes: true})
	}()

	if err := client.StartContainer(ctx, id); err != nil {
		return nil, err
	}

	waitCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}
	code, err := client.WaitContainer(waitCtx, id)
	if err != nil {
		return nil, err
	}

	reader, err := client.ContainerLogs(ctx, id, docker.LogOptions{Tail: "all"})
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	output, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &RunResult{Output: output, ExitCode: int(code)}, nil
}

// PathExistsInImage reports whether a path exists inside an image's
// filesystem.
func PathExistsInImage(ctx context.Context, client docker.Client, image, path string) (bool, error) {
	res, err := RunCommand(ctx, client, RunSpec{
		Image:   image,
		Command: []string{"test", "-e", path},
	})
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// ExecutableExistsInImage reports whether an executable is resolvable on the
// image's PATH.
func ExecutableExistsInImage(ctx context.Context, client docker.Client, image, executable string) (bool, error) {
	res, err := RunCommand(ctx, client, RunSpec{
		Image:   image,
		Command: []string{"sh", "-c", "command -v " + executable},
	})
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// sanitizeName reduces an image reference to characters valid in a container
// name.
func sanitizeName(image string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, image)
}
