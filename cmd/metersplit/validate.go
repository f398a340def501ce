package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metersplit/metersplit/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the metersplit configuration file.

Checks:
  - YAML syntax is valid
  - Server, database, and logging settings are well formed
  - The seed tariff, if present, has ascending slab limits

Examples:
  metersplit validate
  metersplit validate --config /etc/metersplit/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", cfgFile)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  Server:   %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Database: %s (%s)\n", cfg.Database.DSN, cfg.Database.Driver)
	fmt.Printf("  Logging:  %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Tariff != nil {
		fmt.Printf("  Tariff:   %d slabs, VAT %.2f%%\n", len(cfg.Tariff.Slabs), cfg.Tariff.VATRate*100)
	}
	if cfg.Admin.APIKey != "" {
		fmt.Println("  Admin:    API key set")
	} else {
		fmt.Println("  Admin:    no API key (auth disabled)")
	}
	return nil
}
