package main

import (
	"github.com/Gunvolt24/brokerdemo/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP producer (POST /api/message)",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, cleanup, err := app.BootstrapProducer(ctx, &cfg, broker)
		if err != nil {
			return err
		}
		defer cleanup()

		return a.Run(ctx)
	},
}
