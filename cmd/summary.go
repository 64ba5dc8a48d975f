package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/spf13/cobra"
)

var flagSummarySave bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly summary for the mill (--save to keep a snapshot)",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var summaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Saved monthly summaries",
	Args:  cobra.NoArgs,
	RunE:  runSummaryList,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagMonth, "month", "m", "", "Month name or number (default current)")
	summaryCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default current)")
	summaryCmd.Flags().BoolVar(&flagSummarySave, "save", false, "Save the summary, replacing any saved for the same month")

	summaryCmd.AddCommand(summaryListCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	month, year, err := monthFlags(flagMonth, flagYear)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		sum := pipeline.SummaryFor(st.MillRecords(ctx), month, year)

		fmt.Println()
		fmt.Println(cli.RenderTitle("MONTHLY SUMMARY  " + strings.ToUpper(cli.FormatMonth(month, year))))
		fmt.Println()
		printSummary(sum)

		if !flagSummarySave {
			return nil
		}
		if err := st.SaveMonthlySummary(ctx, sum); err != nil {
			return err
		}
		fmt.Printf("  Saved summary for %s %d\n\n", sum.Month, sum.Year)
		return nil
	})
}

func summaryRows(s model.MonthlySummary) [][]string {
	return [][]string{
		{"Income", cli.FormatCurrency(s.TotalIncome)},
		{"Expenses", cli.FormatCurrency(s.TotalExpenses)},
		{"Savings", cli.FormatCurrency(s.TotalSavings)},
		cli.SeparatorRow,
		{"Net balance", cli.Signed(s.NetBalance)},
		{"Repair fund (10% suggestion)", cli.FormatCurrency(s.RepairFund)},
	}
}

func runSummaryList(_ *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		sums := st.MonthlySummaries(ctx)
		if len(sums) == 0 {
			fmt.Println("\n  No saved summaries. Save one with `waniala summary --save`.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("SAVED SUMMARIES"))
		fmt.Println()

		rows := make([][]string, 0, len(sums))
		for _, s := range pipeline.SortSummariesNewestFirst(sums) {
			rows = append(rows, []string{
				fmt.Sprintf("%s %d", s.Month, s.Year),
				cli.FormatAmount(s.TotalIncome),
				cli.FormatAmount(s.TotalExpenses),
				cli.FormatAmount(s.TotalSavings),
				cli.FormatAmount(s.NetBalance),
				cli.FormatAmount(s.RepairFund),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Month", "Income", "Expenses", "Savings", "Net", "Repair Fund"},
			Rows:    rows,
		}))
		return nil
	})
}
