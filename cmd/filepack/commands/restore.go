package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/filepack/internal/app"
)

func (c *CLI) newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore package.json from the backup left by an interrupted run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Restore(cmd.Context(), app.RestoreOptions{
				Dir: projectDir(cmd),
				Log: logOptions(cmd),
			})
		},
	}
	addCommonFlags(cmd)
	return cmd
}
