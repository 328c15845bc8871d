package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/composekit/composekit/pkg/probe"
)

func newReadyCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ready tcp|http <target>",
		Short: "Wait until a TCP endpoint accepts connections or an HTTP URL returns 2xx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "tcp":
				host, portStr, err := net.SplitHostPort(args[1])
				if err != nil {
					return fmt.Errorf("invalid tcp target %q: %w", args[1], err)
				}
				port, err := strconv.Atoi(portStr)
				if err != nil {
					return fmt.Errorf("invalid port %q: %w", portStr, err)
				}
				return probe.WaitForPort(cmd.Context(), host, port, timeout)
			case "http":
				return probe.WaitForHTTP(cmd.Context(), args[1], timeout)
			default:
				return fmt.Errorf("unknown probe type %q (want tcp or http)", args[0])
			}
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "maximum time to wait")
	return cmd
}
