package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/internal/backup"
	"github.com/aryonoco/btrbak/internal/logging"
	"github.com/aryonoco/btrbak/internal/metrics"
	"github.com/aryonoco/btrbak/internal/progressui"
)

func NewRunCmd() *cobra.Command {
	var jobName string
	var plain bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one backup job to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			job, err := cfg.Job(jobName)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()
			logger := logging.FromContext(ctx)

			collectors := metrics.New(job.Name)

			var obs backup.Observer = progressui.NewPlainObserver(os.Stdout)
			var interactive *progressui.TeaObserver
			if !plain && isTerminal(os.Stdout) {
				interactive = newInteractiveObserver(job.Name)
				obs = interactive
			}
			obs = collectors.Wrap(obs)

			bcfg := job.ToBackupConfig()
			start := time.Now()
			runErr := backup.Run(ctx, bcfg, obs)
			if interactive != nil {
				interactive.Done(runErr)
			}
			collectors.RecordOutcome(runErr == nil, time.Since(start))
			if runErr != nil {
				logger.Error("backup run failed", "job", job.Name, "error", runErr)
				return fmt.Errorf("run %s: %w", job.Name, runErr)
			}
			logger.Info("backup run succeeded", "job", job.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobName, "job", "", "job name from the config file")
	cmd.Flags().BoolVar(&plain, "plain", false, "force plain, non-interactive output")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
