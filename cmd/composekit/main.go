package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/composekit/composekit/pkg/compose"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitDockerError  = 2
	ExitStartupError = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "composekit: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

func exitCode(err error) int {
	var startupErr *compose.StartupError
	if errors.As(err, &startupErr) {
		return ExitStartupError
	}
	var configErr *compose.ConfigError
	var validationErr *compose.ValidationError
	if errors.As(err, &configErr) || errors.As(err, &validationErr) ||
		errors.Is(err, compose.ErrNoServices) || errors.Is(err, compose.ErrServiceNotFound) {
		return ExitConfigError
	}
	return ExitDockerError
}
