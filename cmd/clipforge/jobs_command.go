package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newJobsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List export jobs known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cctx.apiClient()
			if err != nil {
				return err
			}
			jobs, err := c.Jobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				cmd.Println("no export jobs")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				finished := ""
				if !job.FinishedAt.IsZero() {
					finished = job.FinishedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					job.ID,
					string(job.Status),
					job.OutputPath,
					job.CreatedAt.Local().Format(time.DateTime),
					finished,
				})
			}
			cmd.Println(renderTable(
				[]string{"ID", "Status", "Output", "Created", "Finished"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
