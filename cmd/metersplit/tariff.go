package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metersplit/metersplit/adapters/sqlite"
	"github.com/metersplit/metersplit/app"
	"github.com/metersplit/metersplit/domain/tariff"
)

var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Show or update the tariff configuration",
	Long: `Show or update the slab-based tariff configuration.

The tariff defines consumption slabs with per-unit rates plus the
fixed charges (demand charge, meter rent) and the VAT rate. Updates
are stored as new versions; saved bills keep the version they were
generated against.

Examples:
  metersplit tariff show
  metersplit tariff set --file tariff.yaml`,
}

var tariffShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current tariff",
	RunE:  runTariffShow,
}

var tariffSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a new tariff version from a YAML file",
	RunE:  runTariffSet,
}

var tariffFile string

func init() {
	rootCmd.AddCommand(tariffCmd)
	tariffCmd.AddCommand(tariffShowCmd)
	tariffCmd.AddCommand(tariffSetCmd)

	tariffSetCmd.Flags().StringVar(&tariffFile, "file", "", "YAML file with the tariff config (required)")
	tariffSetCmd.MarkFlagRequired("file")
}

func tariffService(db *sqlite.DB) *app.TariffService {
	return app.NewTariffService(sqlite.NewTariffStore(db), zerolog.Nop(), nil)
}

func runTariffShow(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg, version, err := tariffService(db).Get(context.Background())
	if err != nil {
		return fmt.Errorf("load tariff: %w", err)
	}

	if version == 0 {
		fmt.Println("No tariff configured.")
		fmt.Println()
		fmt.Println("Store one with: metersplit tariff set --file tariff.yaml")
		return nil
	}

	fmt.Printf("Tariff version %d\n\n", version)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLAB\tUP TO\tRATE")
	fmt.Fprintln(w, "----\t-----\t----")
	for i, s := range cfg.Slabs {
		fmt.Fprintf(w, "%d\t%.0f\t%.4f\n", i+1, s.Limit, s.Rate)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("VAT rate:      %.2f%%\n", cfg.VATRate*100)
	fmt.Printf("Demand charge: %.2f\n", cfg.DemandCharge)
	fmt.Printf("Meter rent:    %.2f\n", cfg.MeterRent)
	fmt.Printf("Bkash charge:  %.2f\n", cfg.BkashCharge)
	return nil
}

func runTariffSet(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(tariffFile)
	if err != nil {
		return fmt.Errorf("read tariff file: %w", err)
	}

	var cfg tariff.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse tariff file: %w", err)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := tariffService(db).Update(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("store tariff: %w", err)
	}

	fmt.Printf("Tariff stored as version %d (%d slabs)\n", version, len(cfg.Slabs))
	return nil
}
