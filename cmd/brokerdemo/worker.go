package main

import (
	"github.com/Gunvolt24/brokerdemo/internal/app"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the consumer worker (metrics and health on the metrics address)",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, cleanup, err := app.BootstrapWorker(ctx, &cfg, broker)
		if err != nil {
			return err
		}
		defer cleanup()

		return a.Run(ctx)
	},
}
