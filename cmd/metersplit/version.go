package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metersplit/metersplit/web"
)

var (
	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("metersplit %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", buildDate)
	},
}

func init() {
	web.BuildVersion = version
	rootCmd.AddCommand(versionCmd)
}
