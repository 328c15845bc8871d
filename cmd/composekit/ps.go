package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/composekit/composekit/pkg/compose"
)

func newPsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List project containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.project()
			if err != nil {
				return err
			}
			containers, err := project.Containers(cmd.Context(), compose.ContainersOptions{Stopped: all})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tCONTAINER\tID")
			for _, c := range containers {
				fmt.Fprintf(w, "%s\t%s\t%.12s\n", c.ServiceName(), c.Name(), c.ID())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include stopped containers")
	return cmd
}
