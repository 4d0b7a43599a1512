package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Scan the inbox once and run a workflow for every object found",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := ctx.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg := rt.Config
			prefix := cfg.Ingest.InputRootPath
			if prefix != "" {
				prefix += "/"
			}
			keys, err := rt.Store.List(cmd.Context(), cfg.Ingest.Bucket, prefix)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Inbox is empty")
				return nil
			}

			var failed []string
			for _, key := range keys {
				if err := rt.Trigger.HandleNewObject(cmd.Context(), cfg.Ingest.Bucket, key); err != nil {
					failed = append(failed, fmt.Sprintf("%s: %v", key, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %s\n", key)
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d workflow(s) failed:\n%s", len(failed), strings.Join(failed, "\n"))
			}
			return nil
		},
	}
	return cmd
}
