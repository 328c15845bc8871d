package main

import (
	"github.com/spf13/cobra"
)

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm",
		Short: "Remove stopped project containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.project()
			if err != nil {
				return err
			}
			return project.RemoveStopped(cmd.Context())
		},
	}
}
