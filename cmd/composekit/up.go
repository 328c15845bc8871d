package main

import (
	"github.com/spf13/cobra"
)

func newUpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "up [service...]",
		Short: "Create and start project containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.project()
			if err != nil {
				return err
			}
			return project.Up(cmd.Context(), args...)
		},
	}
}
