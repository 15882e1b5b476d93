package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/config"
	"github.com/aryonoco/btrbak/internal/logging"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var flags rootFlags

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "btrbak",
		Short:         "btrfs send/receive backup coordinator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "/etc/btrbak/config.yaml", "path to the job config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text, json")

	cmd.AddCommand(
		NewRunCmd(),
		NewCheckCmd(),
		NewPruneCmd(),
		NewSnapshotsCmd(),
		NewScheduleCmd(),
		NewDiagnoseCmd(),
	)
	return cmd
}

// loadConfig reads and validates the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", flags.configPath, err)
	}
	return cfg, nil
}

// setupContext wires the resolved logger into a context that's
// canceled on SIGINT/SIGTERM, the same shutdown signal pair the
// teacher's daemon listens for.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := logging.New(flags.logLevel, flags.logFormat)
	ctx = logging.With(ctx, logger)
	return ctx, cancel
}
