package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/app"
	"github.com/spf13/cobra"
)

var (
	sendID      string
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Publish one message with the given id and print the broker message id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		sender, _, cleanup, err := app.BootstrapSender(ctx, &cfg, broker)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		res, err := sender.Send(ctx, sendID)
		if err != nil {
			return fmt.Errorf("failed to send message to %s: %w", broker.DisplayName(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "messageId=%s sentId=%s\n", res.MessageID, res.SentID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendID, "id", "", "message id to publish")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "publish timeout")
	_ = sendCmd.MarkFlagRequired("id")
}
