package compose

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/composekit/composekit/pkg/docker"
)

// =============================================================================
// Service Translation
// =============================================================================

// runParams is the runtime parameter set derived from one declared service:
// the bridge between the loosely-typed topology document and the imperative
// container-creation call.
type runParams struct {
	image       string
	command     []string
	entrypoint  []string
	env         map[string]string
	ports       []docker.PortBinding
	mounts      []docker.Mount
	networkMode string
	workingDir  string
	hostname    string
	user        string
	tty         bool
}

// translateService converts a service's declarative spec into runParams.
// Relative volume host paths resolve against workingDir; bare environment
// entries resolve through lookup. Fails with ValidationError when the service
// declares no usable image; building from source is unsupported.
func translateService(name string, svc *Node, workingDir string, lookup LookupFunc) (runParams, error) {
	if svc == nil || svc.Kind != KindMap {
		return runParams{}, NewValidationError(name, "", "service spec must be a map")
	}

	params := runParams{
		image: strings.TrimSpace(svc.Field("image").String()),
	}
	if params.image == "" {
		return runParams{}, NewValidationError(name, "image", "service has no image; building from source is not supported")
	}

	var err error
	if params.command, err = argv(name, "command", svc.Field("command")); err != nil {
		return runParams{}, err
	}
	if params.entrypoint, err = argv(name, "entrypoint", svc.Field("entrypoint")); err != nil {
		return runParams{}, err
	}

	if params.env, err = translateEnv(name, svc.Field("environment"), lookup); err != nil {
		return runParams{}, err
	}
	if params.ports, err = translatePorts(name, svc.Field("ports")); err != nil {
		return runParams{}, err
	}
	if params.mounts, err = translateVolumes(name, svc.Field("volumes"), workingDir); err != nil {
		return runParams{}, err
	}

	// Passthrough fields
	params.networkMode = svc.Field("network_mode").String()
	params.workingDir = svc.Field("working_dir").String()
	params.hostname = svc.Field("hostname").String()
	params.user = svc.Field("user").String()
	params.tty = svc.Field("tty").Bool()

	return params, nil
}

// argv normalizes a command or entrypoint field: string form is lexed into
// words shell-style, list form is coerced element-wise.
func argv(service, field string, n *Node) ([]string, error) {
	switch {
	case n == nil:
		return nil, nil
	case n.Kind == KindScalar:
		if n.Value == nil {
			return nil, nil
		}
		words, err := shellwords.Parse(n.String())
		if err != nil {
			return nil, NewValidationError(service, field, fmt.Sprintf("cannot parse %q: %v", n.String(), err))
		}
		return words, nil
	case n.Kind == KindList:
		out := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, item.String())
		}
		return out, nil
	default:
		return nil, NewValidationError(service, field, "must be a string or a list")
	}
}

// translateEnv handles both environment forms. List entries "KEY=VAL" map
// directly and bare "KEY" entries resolve through lookup (empty when unset).
// Map entries with a null value resolve through lookup; any other value is
// coerced to its string form.
func translateEnv(service string, n *Node, lookup LookupFunc) (map[string]string, error) {
	if n == nil {
		return nil, nil
	}

	env := make(map[string]string)
	switch n.Kind {
	case KindList:
		for _, item := range n.Items {
			entry := item.String()
			if key, val, ok := strings.Cut(entry, "="); ok {
				env[key] = val
				continue
			}
			val, _ := lookup(entry)
			env[entry] = val
		}
	case KindMap:
		for _, key := range n.Keys {
			val := n.Fields[key]
			if val.Kind == KindScalar && val.Value == nil {
				resolved, _ := lookup(key)
				env[key] = resolved
				continue
			}
			env[key] = val.String()
		}
	default:
		return nil, NewValidationError(service, "environment", "must be a list or a map")
	}
	return env, nil
}

// translatePorts normalizes port entries. One segment exposes the container
// port with no host binding; two segments are host:container; three are
// ip:host:container with an optional host port.
func translatePorts(service string, n *Node) ([]docker.PortBinding, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != KindList {
		return nil, NewValidationError(service, "ports", "must be a list")
	}

	ports := make([]docker.PortBinding, 0, len(n.Items))
	for _, item := range n.Items {
		spec := item.String()
		binding, err := parsePortSpec(spec)
		if err != nil {
			return nil, NewValidationError(service, "ports", fmt.Sprintf("invalid port %q: %v", spec, err))
		}
		ports = append(ports, binding)
	}
	return ports, nil
}

func parsePortSpec(spec string) (docker.PortBinding, error) {
	parts := strings.Split(spec, ":")

	containerPart := parts[len(parts)-1]
	proto := ""
	if port, p, ok := strings.Cut(containerPart, "/"); ok {
		containerPart, proto = port, p
	}
	containerPort, err := strconv.Atoi(containerPart)
	if err != nil {
		return docker.PortBinding{}, fmt.Errorf("container port %q is not a number", containerPart)
	}

	binding := docker.PortBinding{ContainerPort: containerPort, Protocol: proto}

	switch len(parts) {
	case 1:
		// Container port only, no host binding.
	case 2:
		binding.Bind = true
		// A non-numeric host segment, such as a range, passes through for
		// the daemon to interpret.
		if hostPort, err := strconv.Atoi(parts[0]); err == nil {
			binding.HostPort = hostPort
		} else {
			binding.HostRange = parts[0]
		}
	case 3:
		binding.Bind = true
		binding.HostIP = parts[0]
		if parts[1] != "" {
			hostPort, err := strconv.Atoi(parts[1])
			if err != nil {
				return docker.PortBinding{}, fmt.Errorf("host port %q is not a number", parts[1])
			}
			binding.HostPort = hostPort
		}
	default:
		return docker.PortBinding{}, fmt.Errorf("too many segments")
	}
	return binding, nil
}

// translateVolumes normalizes volume entries of the form
// host:container[:mode]. Host paths beginning with "./" resolve against
// workingDir, not the process working directory.
func translateVolumes(service string, n *Node, workingDir string) ([]docker.Mount, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != KindList {
		return nil, NewValidationError(service, "volumes", "must be a list")
	}

	mounts := make([]docker.Mount, 0, len(n.Items))
	for _, item := range n.Items {
		spec := item.String()
		parts := strings.Split(spec, ":")
		if len(parts) == 1 {
			// A bare path is an anonymous volume; the daemon provisions it
			// without a host binding.
			continue
		}
		if len(parts) > 3 {
			return nil, NewValidationError(service, "volumes", fmt.Sprintf("invalid volume %q", spec))
		}

		source := parts[0]
		if strings.HasPrefix(source, "./") {
			source = filepath.Join(workingDir, source[2:])
		}

		m := docker.Mount{Source: source, Target: parts[1]}
		if len(parts) == 3 {
			switch parts[2] {
			case "ro":
				m.ReadOnly = true
			case "rw":
				// read-write is the default
			default:
				return nil, NewValidationError(service, "volumes", fmt.Sprintf("unknown mode %q in %q", parts[2], spec))
			}
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}
