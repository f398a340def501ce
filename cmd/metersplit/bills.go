package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/metersplit/metersplit/adapters/clock"
	"github.com/metersplit/metersplit/adapters/idgen"
	"github.com/metersplit/metersplit/adapters/sqlite"
	"github.com/metersplit/metersplit/app"
	"github.com/metersplit/metersplit/domain/bill"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Compute, save, and browse bills",
	Long: `Compute the bill split for the current readings, save it to
history, and browse or replay past bills.

Examples:
  metersplit bills calc --late-fee --bkash-fee
  metersplit bills save --month 2024-05
  metersplit bills history
  metersplit bills show bill_123
  metersplit bills replay bill_123
  metersplit bills rollover`,
}

var billsCalcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute the split without saving",
	RunE:  runBillsCalc,
}

var billsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Compute the split and save it to history",
	RunE:  runBillsSave,
}

var billsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved bills, newest first",
	RunE:  runBillsHistory,
}

var billsShowCmd = &cobra.Command{
	Use:   "show <bill-id>",
	Short: "Show a saved bill's per-tenant breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsShow,
}

var billsReplayCmd = &cobra.Command{
	Use:   "replay <bill-id>",
	Short: "Re-run the split over a saved bill's readings with the current tariff",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsReplay,
}

var billsRolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Close the billing period: current readings become previous",
	RunE:  runBillsRollover,
}

var (
	billMonth    string
	billLateFee  bool
	billBkashFee bool
	billLimit    int
)

func init() {
	rootCmd.AddCommand(billsCmd)

	billsCmd.AddCommand(billsCalcCmd)
	billsCmd.AddCommand(billsSaveCmd)
	billsCmd.AddCommand(billsHistoryCmd)
	billsCmd.AddCommand(billsShowCmd)
	billsCmd.AddCommand(billsReplayCmd)
	billsCmd.AddCommand(billsRolloverCmd)

	for _, c := range []*cobra.Command{billsCalcCmd, billsSaveCmd} {
		c.Flags().StringVar(&billMonth, "month", "", "billing month (YYYY-MM, default: current)")
		c.Flags().BoolVar(&billLateFee, "late-fee", false, "include the late fee")
		c.Flags().BoolVar(&billBkashFee, "bkash-fee", false, "include the bkash charge")
	}

	billsHistoryCmd.Flags().IntVar(&billLimit, "limit", 20, "max bills to list")
}

func billingService(db *sqlite.DB) *app.BillingService {
	return app.NewBillingService(app.BillingDeps{
		Meters:  sqlite.NewMeterStore(db),
		Tariffs: sqlite.NewTariffStore(db),
		Bills:   sqlite.NewBillStore(db),
		Clock:   clock.Real{},
		IDs:     idgen.UUID{},
		Logger:  zerolog.Nop(),
	})
}

func billOptions() bill.Options {
	return bill.Options{
		Month:           billMonth,
		IncludeLateFee:  billLateFee,
		IncludeBkashFee: billBkashFee,
	}
}

func printBreakdown(res bill.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TENANT\tUNITS\tENERGY\tFIXED\tPAYABLE")
	fmt.Fprintln(w, "------\t-----\t------\t-----\t-------")
	for _, u := range res.Users {
		fmt.Fprintf(w, "%s\t%.1f\t%.2f\t%.2f\t%.2f\n",
			u.Name, u.UnitsUsed, u.EnergyCost, u.FixedCost, u.TotalPayable)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Total units:      %.1f\n", res.TotalUnits)
	fmt.Printf("Effective rate:   %.4f\n", res.CalculatedRate)
	fmt.Printf("VAT total:        %.2f\n", res.VATTotal)
	if res.LateFee > 0 {
		fmt.Printf("Late fee:         %.2f\n", res.LateFee)
	}
	fmt.Printf("Total collection: %.2f\n", res.TotalCollection)
}

func runBillsCalc(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	res, _, err := billingService(db).Preview(context.Background(), billOptions())
	if err != nil {
		return fmt.Errorf("compute bill: %w", err)
	}

	printBreakdown(res)
	return nil
}

func runBillsSave(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, res, err := billingService(db).SaveToHistory(context.Background(), billOptions())
	if err != nil {
		return fmt.Errorf("save bill: %w", err)
	}

	printBreakdown(res)
	fmt.Println()
	fmt.Printf("Saved as %s (month %s, tariff v%d)\n", rec.ID, rec.Month, rec.TariffVersion)
	return nil
}

func runBillsHistory(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := sqlite.NewBillStore(db).List(context.Background(), billLimit)
	if err != nil {
		return fmt.Errorf("list bills: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("No saved bills.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMONTH\tGENERATED\tMETERS\tPAYABLE\tTARIFF")
	fmt.Fprintln(w, "--\t-----\t---------\t------\t-------\t------")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\tv%d\n",
			rec.ID, rec.Month, rec.GeneratedAt.Format("2006-01-02"),
			len(rec.SubMeters), rec.TotalBillPayable, rec.TariffVersion)
	}
	w.Flush()
	return nil
}

func runBillsShow(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewBillStore(db)
	ctx := context.Background()

	rec, err := store.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load bill: %w", err)
	}
	users, err := store.ListUsers(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load bill users: %w", err)
	}

	fmt.Printf("Bill %s (month %s, tariff v%d)\n", rec.ID, rec.Month, rec.TariffVersion)
	fmt.Printf("Main meter: %.1f -> %.1f\n\n", rec.MainMeter.Previous, rec.MainMeter.Current)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TENANT\tUNITS\tENERGY\tFIXED\tPAYABLE")
	fmt.Fprintln(w, "------\t-----\t------\t-----\t-------")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%.1f\t%.2f\t%.2f\t%.2f\n",
			u.Name, u.UnitsUsed, u.EnergyCost, u.FixedCost, u.TotalPayable)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Total payable: %.2f\n", rec.TotalBillPayable)
	return nil
}

func runBillsReplay(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, res, err := billingService(db).Replay(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("replay bill: %w", err)
	}

	fmt.Printf("Replaying %s (month %s) with the current tariff\n\n", rec.ID, rec.Month)
	printBreakdown(res)

	if diff := res.TotalCollection - rec.TotalBillPayable; diff > 0.005 || diff < -0.005 {
		fmt.Println()
		fmt.Printf("Saved total was %.2f (difference %+.2f from tariff changes)\n",
			rec.TotalBillPayable, diff)
	}
	return nil
}

func runBillsRollover(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := billingService(db).Rollover(context.Background()); err != nil {
		return fmt.Errorf("rollover: %w", err)
	}

	fmt.Println("Billing period rolled over: current readings are now previous readings.")
	return nil
}
