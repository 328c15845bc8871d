// Package compose is a lightweight multi-container orchestration engine. It
// parses a compose-style topology document, translates declared services into
// container runtime parameters, and reconciles them against a live Docker
// daemon, idempotently, with all state kept in the runtime's own labels.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNoServices indicates a topology document without a usable top-level
	// services map.
	ErrNoServices = errors.New("topology must define a services map")

	// ErrServiceNotFound indicates a request for a service the topology does
	// not declare.
	ErrServiceNotFound = errors.New("service not found in topology")

	// ErrServiceNotRunning indicates no running container exists for a
	// service.
	ErrServiceNotRunning = errors.New("no running container for service")

	// ErrNotExited indicates an exit code was requested for a container that
	// has not exited.
	ErrNotExited = errors.New("container has not exited")
)

// ConfigError reports a malformed or incomplete topology document. It is
// fatal and surfaced at load time.
type ConfigError struct {
	File    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(file, message string, err error) *ConfigError {
	return &ConfigError{File: file, Message: message, Err: err}
}

// ValidationError reports a service spec that cannot be translated into
// container parameters. It is raised before any runtime mutation, so a
// validation failure never leaves a partial container behind.
type ValidationError struct {
	Service string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("service %s: %s: %s", e.Service, e.Field, e.Message)
	}
	return fmt.Sprintf("service %s: %s", e.Service, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(service, field, message string) *ValidationError {
	return &ValidationError{Service: service, Field: field, Message: message}
}

// StartupError reports a created container that did not reach running state.
// LogTail carries a bounded excerpt of the container's logs for diagnosis.
type StartupError struct {
	Service   string
	Container string
	Status    string
	LogTail   string
}

func (e *StartupError) Error() string {
	msg := fmt.Sprintf("service %s: container %s is %s, not running", e.Service, e.Container, e.Status)
	if e.LogTail != "" {
		msg += "\nlast log output:\n" + e.LogTail
	}
	return msg
}
