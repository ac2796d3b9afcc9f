package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xvanov/clipforge/internal/client"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cctx.apiClient()
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context())
			if err != nil {
				if errors.Is(err, client.ErrDaemonUnavailable) {
					cmd.Println("daemon: not running")
					return nil
				}
				return err
			}

			rows := [][]string{
				{"Running", strconv.FormatBool(status.Running)},
				{"PID", strconv.Itoa(status.PID)},
				{"Active jobs", strconv.Itoa(status.ActiveJobs)},
				{"Job database", status.JobDBPath},
				{"Lock file", status.LockFilePath},
			}
			cmd.Println(renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
