package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "trigger <object-key>",
		Short: "Run the ingest workflow for one object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := ctx.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if bucket == "" {
				bucket = rt.Config.Ingest.Bucket
			}
			if err := rt.Trigger.HandleNewObject(cmd.Context(), bucket, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workflow finished for %s::/%s\n", bucket, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding the object (defaults to the configured inbox bucket)")
	return cmd
}
