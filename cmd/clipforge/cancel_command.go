package main

import (
	"github.com/spf13/cobra"
)

func newCancelCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a running export job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cctx.apiClient()
			if err != nil {
				return err
			}
			if err := c.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("cancelled %s\n", args[0])
			return nil
		},
	}
}
