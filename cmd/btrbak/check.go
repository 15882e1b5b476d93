package main

import (
	"path/filepath"
	"time"

	monitoringplugin "github.com/dsh2dsh/go-monitoringplugin/v2"
	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/internal/check"
)

func NewCheckCmd() *cobra.Command {
	var jobName string
	var warn, crit time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report snapshot freshness in a monitoring-plugin-compatible format",
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

			resp := monitoringplugin.NewResponse("btrbak snapshots")
			if err := check.RunBoth(ctx, resp, warn, crit, job.SnapshotDir, job.DestinationMount, filepath.Base(job.SourceVolume)); err != nil {
				return err
			}
			resp.OutputAndExit()
			return nil
		},
	}
	cmd.Flags().StringVar(&jobName, "job", "", "job name from the config file")
	cmd.Flags().DurationVar(&warn, "warn", time.Hour, "warn if the newest snapshot is older than this")
	cmd.Flags().DurationVar(&crit, "crit", 6*time.Hour, "critical if the newest snapshot is older than this")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
