package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ingester/internal/daemon"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the ingest daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, logger, err := ctx.runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			d, err := daemon.New(rt.Config, rt.Store, rt.Trigger, rt.Receiver, logger)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := d.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()
			d.Stop()
			return nil
		},
	}
}
