package main

import (
	"github.com/spf13/cobra"

	"github.com/composekit/composekit/pkg/compose"
)

func newDownCmd(a *app) *cobra.Command {
	var removeVolumes bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove project containers and the project network",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.project()
			if err != nil {
				return err
			}
			return project.Down(cmd.Context(), compose.DownOptions{RemoveVolumes: removeVolumes})
		},
	}
	cmd.Flags().BoolVarP(&removeVolumes, "volumes", "v", false, "also remove anonymous volumes")
	return cmd
}
