package compose

import (
	"fmt"
	"strings"
)

// =============================================================================
// Labels
// =============================================================================

// Labels attached to every resource the engine creates. They are the sole
// group-membership mechanism: there is no registry besides the runtime's own
// metadata store.
const (
	LabelProject = "com.docker.compose.project"
	LabelService = "com.docker.compose.service"
)

// =============================================================================
// Resource Naming Functions
// =============================================================================

// ContainerName generates the deterministic container name for a service.
// Pattern: {project}_{service}_1. The name doubles as the primary lookup key
// when re-discovering a service's container.
//
// Example:
//
//	ContainerName("myproj", "broker") // returns "myproj_broker_1"
func ContainerName(project, service string) string {
	return fmt.Sprintf("%s_%s_1", project, service)
}

// NetworkName generates the name of a project's network.
// Pattern: {project}_default.
func NetworkName(project string) string {
	return fmt.Sprintf("%s_default", project)
}

// ServiceNameFromContainer derives a service name from a container name of
// the form {project}_{service}_{instance}. It is the fallback used when a
// container carries no service label.
//
// Example:
//
//	ServiceNameFromContainer("myproj", "myproj_broker_1") // returns "broker"
func ServiceNameFromContainer(project, containerName string) string {
	name := strings.TrimPrefix(containerName, project+"_")

	// Drop a trailing instance number.
	if i := strings.LastIndex(name, "_"); i > 0 && isDigits(name[i+1:]) {
		return name[:i]
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
