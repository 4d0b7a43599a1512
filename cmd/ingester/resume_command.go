package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ingester/internal/inference"
	"ingester/internal/notifications"
)

func newResumeCommand(ctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "resume <job-id>",
		Short: "Deliver an async-scan completion and resume its workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := ctx.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			payload, err := notifications.CompletionMessage{JobID: args[0], Status: status}.Encode()
			if err != nil {
				return err
			}
			if err := rt.Trigger.HandleCompletion(cmd.Context(), payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completion processed for job %s (%s)\n", args[0], status)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", inference.StatusSucceeded, "Job status to deliver (SUCCEEDED or FAILED)")
	return cmd
}
