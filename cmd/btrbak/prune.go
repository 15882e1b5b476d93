package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/internal/backup"
)

func NewPruneCmd() *cobra.Command {
	var jobName string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply retention pruning for a job without running a backup",
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

			sourceBasename := filepath.Base(job.SourceVolume)
			return backup.Prune(ctx, backup.NoopObserver{}, job.SnapshotDir, job.DestinationMount,
				sourceBasename, job.RetentionDays, job.KeepMinimum)
		},
	}
	cmd.Flags().StringVar(&jobName, "job", "", "job name from the config file")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
