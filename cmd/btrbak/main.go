// Command btrbak runs and manages btrfs send/receive backup jobs
// (SPEC_FULL.md). The command set is new (the teacher's CLI source
// wasn't retrieved in the pack) but follows the same
// NewXCmd() *cobra.Command factory-per-subcommand layout that
// github.com/spf13/cobra applications conventionally use.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
