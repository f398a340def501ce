package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/metersplit/metersplit/adapters/idgen"
	"github.com/metersplit/metersplit/adapters/sqlite"
	"github.com/metersplit/metersplit/app"
	"github.com/metersplit/metersplit/config"
)

var metersCmd = &cobra.Command{
	Use:   "meters",
	Short: "Manage tenant sub-meters",
	Long: `Manage the main meter and tenant sub-meters.

Each tenant has a sub-meter with a previous and current reading.
The difference is the tenant's consumption for the billing period.

Examples:
  metersplit meters list
  metersplit meters add --name="Unit A" --meter-no=A-100
  metersplit meters read meter_123 --current=1250
  metersplit meters main --previous=1000 --current=1150`,
}

var metersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sub-meters",
	RunE:  runMetersList,
}

var metersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new sub-meter",
	RunE:  runMetersAdd,
}

var metersRemoveCmd = &cobra.Command{
	Use:   "remove <meter-id>",
	Short: "Remove a sub-meter",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetersRemove,
}

var metersReadCmd = &cobra.Command{
	Use:   "read <meter-id>",
	Short: "Set a sub-meter's readings",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetersRead,
}

var metersMainCmd = &cobra.Command{
	Use:   "main",
	Short: "Show or set the main meter readings",
	RunE:  runMetersMain,
}

var (
	meterName     string
	meterNo       string
	meterPrevious float64
	meterCurrent  float64
)

func init() {
	rootCmd.AddCommand(metersCmd)

	metersCmd.AddCommand(metersListCmd)
	metersCmd.AddCommand(metersAddCmd)
	metersCmd.AddCommand(metersRemoveCmd)
	metersCmd.AddCommand(metersReadCmd)
	metersCmd.AddCommand(metersMainCmd)

	metersAddCmd.Flags().StringVar(&meterName, "name", "", "tenant name (required)")
	metersAddCmd.Flags().StringVar(&meterNo, "meter-no", "", "physical meter number")
	metersAddCmd.MarkFlagRequired("name")

	metersReadCmd.Flags().Float64Var(&meterPrevious, "previous", 0, "previous reading")
	metersReadCmd.Flags().Float64Var(&meterCurrent, "current", 0, "current reading")

	metersMainCmd.Flags().StringVar(&meterNo, "meter-no", "", "physical meter number")
	metersMainCmd.Flags().Float64Var(&meterPrevious, "previous", 0, "previous reading")
	metersMainCmd.Flags().Float64Var(&meterCurrent, "current", 0, "current reading")
}

// openDatabase opens and migrates the configured database.
func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func meterService(db *sqlite.DB) *app.MeterService {
	return app.NewMeterService(sqlite.NewMeterStore(db), idgen.UUID{}, zerolog.Nop())
}

func runMetersList(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	readings, err := meterService(db).List(context.Background())
	if err != nil {
		return fmt.Errorf("list meters: %w", err)
	}

	if len(readings) == 0 {
		fmt.Println("No sub-meters found.")
		fmt.Println()
		fmt.Println("Register one with: metersplit meters add --name=\"Unit A\"")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMETER NO\tPREVIOUS\tCURRENT\tUNITS")
	fmt.Fprintln(w, "--\t----\t--------\t--------\t-------\t-----")
	for _, m := range readings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\n",
			m.ID, m.Name, m.MeterNo, m.Previous, m.Current, m.Consumption())
	}
	w.Flush()
	return nil
}

func runMetersAdd(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := meterService(db).Add(context.Background(), meterName, meterNo)
	if err != nil {
		return fmt.Errorf("add meter: %w", err)
	}

	fmt.Printf("Sub-meter registered: %s (%s)\n", m.Name, m.ID)
	return nil
}

func runMetersRemove(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := meterService(db).Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("remove meter: %w", err)
	}

	fmt.Printf("Sub-meter removed: %s\n", args[0])
	return nil
}

func runMetersRead(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var prev, cur *float64
	if cmd.Flags().Changed("previous") {
		prev = &meterPrevious
	}
	if cmd.Flags().Changed("current") {
		cur = &meterCurrent
	}
	if prev == nil && cur == nil {
		return fmt.Errorf("nothing to update: pass --previous and/or --current")
	}

	m, err := meterService(db).SetReadings(context.Background(), args[0], prev, cur)
	if err != nil {
		return fmt.Errorf("set readings: %w", err)
	}

	fmt.Printf("%s: %.1f -> %.1f (%.1f units)\n", m.Name, m.Previous, m.Current, m.Consumption())
	return nil
}

func runMetersMain(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	svc := meterService(db)
	ctx := context.Background()

	if !cmd.Flags().Changed("previous") && !cmd.Flags().Changed("current") && !cmd.Flags().Changed("meter-no") {
		m, err := svc.Main(ctx)
		if err != nil {
			return fmt.Errorf("load main meter: %w", err)
		}
		fmt.Printf("Main meter %s: %.1f -> %.1f (%.1f units)\n",
			m.MeterNo, m.Previous, m.Current, m.Consumption())
		return nil
	}

	var prev, cur *float64
	if cmd.Flags().Changed("previous") {
		prev = &meterPrevious
	}
	if cmd.Flags().Changed("current") {
		cur = &meterCurrent
	}

	m, err := svc.SetMainReadings(ctx, meterNo, prev, cur)
	if err != nil {
		return fmt.Errorf("set main readings: %w", err)
	}

	fmt.Printf("Main meter updated: %.1f -> %.1f (%.1f units)\n", m.Previous, m.Current, m.Consumption())
	return nil
}
