package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

func NewSnapshotsCmd() *cobra.Command {
	var jobName string
	var destination bool

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshots for a job, newest last",
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

			dir := job.SnapshotDir
			loc := snapshot.Source
			if destination {
				dir = job.DestinationMount
				loc = snapshot.Destination
			}

			snaps, err := snapshot.Enumerate(ctx, dir, filepath.Base(job.SourceVolume), loc)
			if err != nil {
				return err
			}
			sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
			for _, s := range snaps {
				fmt.Printf("%s\t%s\t%s\n", s.Name, s.Identifier, s.ModTime.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jobName, "job", "", "job name from the config file")
	cmd.Flags().BoolVar(&destination, "destination", false, "list destination-side snapshots instead of source-side")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
