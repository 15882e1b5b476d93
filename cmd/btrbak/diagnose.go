package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryonoco/btrbak/internal/diagnostics"
)

func NewDiagnoseCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Write a zstd-compressed support bundle with the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			return diagnostics.Write(f, diagnostics.Bundle{
				Config: cfg,
				Now:    time.Now(),
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "btrbak-diagnostics.tar.zst", "output path for the bundle")
	return cmd
}
