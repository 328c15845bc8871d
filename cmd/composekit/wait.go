package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newWaitCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait <service>",
		Short: "Block until a service's container exits and print its exit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.project()
			if err != nil {
				return err
			}
			code, err := project.Wait(cmd.Context(), args[0], timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum time to wait (0 waits forever)")
	return cmd
}
