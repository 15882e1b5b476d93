package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dsh2dsh/cron/v3"
	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/config"
	"github.com/aryonoco/btrbak/internal/backup"
	"github.com/aryonoco/btrbak/internal/logging"
	"github.com/aryonoco/btrbak/internal/metrics"
	"github.com/aryonoco/btrbak/internal/progressui"
)

// NewScheduleCmd runs every job whose config carries a Cron expression
// on its own schedule, for as long as the process lives.
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run all cron-scheduled jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()
			logger := logging.FromContext(ctx)

			c := cron.New()
			for _, job := range cfg.Jobs {
				if job.Cron == "" {
					continue
				}
				job := job
				_, err := c.AddFunc(job.Cron, func() {
					runScheduledJob(ctx, job, logger)
				})
				if err != nil {
					logger.Error("invalid cron expression", "job", job.Name, "cron", job.Cron, "error", err)
					continue
				}
				logger.Info("scheduled job", "job", job.Name, "cron", job.Cron)
			}

			c.Start()
			defer c.Stop()

			<-ctx.Done()
			logger.Info("schedule command shutting down")
			return nil
		},
	}
	return cmd
}

func runScheduledJob(ctx context.Context, job config.Job, logger *slog.Logger) {
	collectors := metrics.New(job.Name)
	obs := collectors.Wrap(progressui.NewPlainObserver(os.Stdout))

	start := time.Now()
	runErr := backup.Run(ctx, job.ToBackupConfig(), obs)
	collectors.RecordOutcome(runErr == nil, time.Since(start))
	if runErr != nil {
		logger.Error("scheduled run failed", "job", job.Name, "error", runErr)
		return
	}
	logger.Info("scheduled run succeeded", "job", job.Name)
}
