package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show suspended workflows and recent executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := ctx.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()
			out := cmd.OutOrStdout()

			pending, err := rt.Jobs.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Suspended workflows: %d\n", len(pending))
			if len(pending) > 0 {
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"Job ID", "Object", "Pending Scan", "Since"})
				for _, job := range pending {
					tw.AppendRow(table.Row{
						job.JobID,
						job.State.Describe(),
						string(job.State.PendingScanResults),
						job.CreatedAt.Local().Format(time.RFC3339),
					})
				}
				tw.Render()
			}

			executions, err := rt.Jobs.ListExecutions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nRecent executions: %d\n", len(executions))
			if len(executions) > 0 {
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"Execution", "Object", "Status", "Detail", "Started"})
				for _, exec := range executions {
					tw.AppendRow(table.Row{
						exec.Name,
						exec.Bucket + "::/" + exec.InputObjectKey,
						exec.Status,
						exec.Detail,
						exec.StartedAt.Local().Format(time.RFC3339),
					})
				}
				tw.Render()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum executions to show (0 for all)")
	return cmd
}
