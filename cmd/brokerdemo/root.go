package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/brokerdemo/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	brokerFlag string
	envFile    string

	cfg    config.Config
	broker config.Broker
)

var rootCmd = &cobra.Command{
	Use:           "brokerdemo",
	Short:         "SQS / Kafka producer and worker demo",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		broker, err = resolveBroker(brokerFlag, cfg.Broker)
		return err
	},
}

// Execute — точка входа CLI; ошибка → код выхода 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&brokerFlag, "broker", "", "message broker: sqs|kafka (env "+config.Prefix+"_BROKER)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env.local", "optional dotenv file loaded before the environment is read")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(sendCmd)
}

// loadEnvFile — отсутствующий файл не ошибка; переменные окружения имеют приоритет.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// resolveBroker — флаг важнее переменной окружения.
func resolveBroker(flag, env string) (config.Broker, error) {
	if flag != "" {
		return config.ParseBroker(flag)
	}
	return config.ParseBroker(env)
}

// signalContext — контекст, отменяемый по SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
