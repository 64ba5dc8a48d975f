package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:     "overview",
	Aliases: []string{"status"},
	Short:   "Dashboard overview for the current month",
	RunE:    runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(_ *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, cfg config.Config, st *store.Store) error {
		books, err := loadBooks(ctx, st)
		if err != nil {
			return err
		}

		now := time.Now()
		d := pipeline.Dashboard(books.Mill, books.Rentals, books.RepairFund, now)

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", strings.ToUpper(cfg.General.BusinessName), cli.FormatMonth(d.Month, d.Year))))
		fmt.Println()

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Posho Mill",
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Income", cli.FormatCurrency(d.Mill.TotalIncome)},
				{"Expenses", cli.FormatCurrency(d.Mill.TotalExpenses)},
				{"Savings", cli.FormatCurrency(d.Mill.TotalSavings)},
				cli.SeparatorRow,
				{"Net balance", cli.Signed(d.Mill.NetBalance)},
				{"Repair fund (10% suggestion)", cli.FormatCurrency(d.Mill.RepairFund)},
				{"Entries this month", cli.FormatNumber(int64(d.Mill.Records))},
			},
		}))

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Rentals",
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Rooms", fmt.Sprintf("%d (%d paid)", d.Rentals.Rooms, d.Rentals.PaidRooms)},
				{"Expected", cli.FormatCurrency(d.Rentals.TotalExpected)},
				{"Collected", cli.FormatCurrency(d.Rentals.TotalCollected)},
				{"Pending", cli.FormatCurrency(d.Rentals.Pending)},
				{"Collection", cli.RenderProgressBar(d.Rentals.CollectionRate(), 20)},
			},
		}))

		fmt.Println(cli.RenderKeyValues([][2]string{
			{"Repair fund (stored)", cli.FormatCurrency(d.StoredFund)},
			{"Today's balance", cli.FormatCurrency(d.Today.Balance)},
			{"Mill entries (all time)", cli.FormatNumber(int64(d.TotalMillEntries))},
		}))

		days := pipeline.AggregateDays(books.Mill, d.Month, d.Year)
		if len(days) > 0 && d.Mill.Records > 0 {
			// AggregateDays is newest first; the sparkline reads left to right.
			values := make([]float64, 0, len(days))
			for i := len(days) - 1; i >= 0; i-- {
				values = append(values, days[i].Income.Float())
			}
			fmt.Printf("  Daily income  %s\n\n", cli.RenderSparkline(values))
		}
		return nil
	})
}
