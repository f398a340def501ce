package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metersplit",
	Short: "Split a shared electricity bill across tenant sub-meters",
	Long: `Metersplit splits a main electricity meter's bill across tenant
sub-meters using slab-based tariff pricing. Metering loss between the
main meter and the sub-meter total is absorbed into the effective
per-unit rate so the collected total always matches the bill.

Quick start:
  metersplit serve          # Start the HTTP API server
  metersplit meters add     # Register a tenant sub-meter
  metersplit bills calc     # Compute the current split

Management:
  metersplit tariff         # Show or update the tariff
  metersplit bills          # Compute, save, and browse bills
  metersplit validate       # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "metersplit.yaml", "config file path")
}
