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

var (
	flagMillDate        string
	flagMillIncome      string
	flagMillExpenseDesc string
	flagMillExpense     string
	flagMillElectricity string
	flagMillSavings     string
	flagMillNotes       string
	flagMillListDate    string
	flagMonth           string
	flagYear            int
)

var millCmd = &cobra.Command{
	Use:   "mill",
	Short: "Posho mill records",
}

var millAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a day's takings and expenses (interactive when no flags are given)",
	Args:  cobra.NoArgs,
	RunE:  runMillAdd,
}

var millQuickCmd = &cobra.Command{
	Use:   "quick NAME [AMOUNT]",
	Short: "Record a quick expense for today",
	Long:  "Record an expense-only entry for today. AMOUNT defaults to the configured amount for NAME.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runMillQuick,
}

var millListCmd = &cobra.Command{
	Use:   "list",
	Short: "Mill records, newest first",
	Args:  cobra.NoArgs,
	RunE:  runMillList,
}

var millMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Monthly totals with a daily table and expense breakdown",
	Args:  cobra.NoArgs,
	RunE:  runMillMonth,
}

func init() {
	f := millAddCmd.Flags()
	f.StringVar(&flagMillDate, "date", "", "Calendar day YYYY-MM-DD (default today)")
	f.StringVar(&flagMillIncome, "income", "", "Income")
	f.StringVar(&flagMillExpenseDesc, "expense-desc", "", "Expense description")
	f.StringVar(&flagMillExpense, "expense", "", "Expense amount")
	f.StringVar(&flagMillElectricity, "electricity", "", "Electricity cost")
	f.StringVar(&flagMillSavings, "savings", "", "Amount saved")
	f.StringVar(&flagMillNotes, "notes", "", "Notes")

	millListCmd.Flags().StringVar(&flagMillListDate, "date", "", "Only show records for this day")

	millMonthCmd.Flags().StringVarP(&flagMonth, "month", "m", "", "Month name or number (default current)")
	millMonthCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default current)")

	millCmd.AddCommand(millAddCmd, millQuickCmd, millListCmd, millMonthCmd)
	rootCmd.AddCommand(millCmd)
}

func runMillAdd(cmd *cobra.Command, _ []string) error {
	var in millInput
	if !localFlagsChanged(cmd) {
		var err error
		in, err = promptMillRecord(today())
		if err != nil {
			return err
		}
	} else {
		in = millInput{
			Date:        flagMillDate,
			Income:      flagMillIncome,
			ExpenseDesc: flagMillExpenseDesc,
			Expense:     flagMillExpense,
			Electricity: flagMillElectricity,
			Savings:     flagMillSavings,
			Notes:       flagMillNotes,
		}
	}

	rec, err := in.record()
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		if err := st.AppendMill(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("\n  Saved mill entry for %s\n", cli.FormatDate(rec.Date))
		fmt.Println(cli.RenderKeyValues([][2]string{
			{"Income", cli.FormatCurrency(rec.Income)},
			{"Expenses", cli.FormatCurrency(rec.ExpenseAmount + rec.Electricity)},
			{"Savings", cli.FormatCurrency(rec.Savings)},
			{"Balance", cli.Signed(pipeline.DailyBalance(rec))},
		}))
		return nil
	})
}

func runMillQuick(_ *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, cfg config.Config, st *store.Store) error {
		name := args[0]
		var amount model.Money
		if q, ok := cfg.LookupQuickExpense(name); ok {
			name = q.Name
			amount = q.DefaultAmount()
		}
		if len(args) == 2 {
			m, err := model.ParseMoney(args[1])
			if err != nil {
				return err
			}
			amount = m
		}
		if amount <= 0 {
			return fmt.Errorf("no amount for %q: pass one as the second argument", name)
		}

		rec := config.QuickExpenseRecord(name, amount, today())
		if err := st.AppendMill(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("\n  Recorded %s: %s\n\n", name, cli.FormatCurrency(amount))
		return nil
	})
}

func runMillList(_ *cobra.Command, _ []string) error {
	day := ""
	if flagMillListDate != "" {
		t, err := model.ParseDay(flagMillListDate)
		if err != nil {
			return err
		}
		day = model.Day(t)
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		records := pipeline.SortMillNewestFirst(pipeline.FilterMillByDate(st.MillRecords(ctx), day))
		if len(records) == 0 {
			fmt.Println("\n  No mill records found.")
			return nil
		}

		title := "MILL RECORDS"
		if day != "" {
			title += "  " + cli.FormatDate(day)
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle(title))
		fmt.Println()

		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				cli.FormatShortDate(r.Date),
				cli.FormatAmount(r.Income),
				cli.Truncate(r.ExpenseDescription, 18),
				cli.FormatAmount(r.ExpenseAmount),
				cli.FormatAmount(r.Electricity),
				cli.FormatAmount(r.Savings),
				cli.FormatAmount(pipeline.DailyBalance(r)),
				cli.Truncate(r.Notes, 24),
			})
		}

		table := cli.Table{
			Headers: []string{"Date", "Income", "Expense", "Amount", "Electricity", "Savings", "Balance", "Notes"},
			Rows:    rows,
		}
		if day != "" {
			t := pipeline.DayTotals(records, day)
			table.Footer = []string{"TOTAL", cli.FormatAmount(t.Income), "", cli.FormatAmount(t.Expenses), "", cli.FormatAmount(t.Savings), cli.FormatAmount(t.Balance), ""}
		}
		fmt.Print(cli.RenderTable(table))
		return nil
	})
}

func runMillMonth(_ *cobra.Command, _ []string) error {
	month, year, err := monthFlags(flagMonth, flagYear)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		records := st.MillRecords(ctx)
		totals := pipeline.MonthlyTotals(records, month, year)

		fmt.Println()
		fmt.Println(cli.RenderTitle("POSHO MILL  " + strings.ToUpper(cli.FormatMonth(month, year))))
		fmt.Println()

		if totals.Records == 0 {
			fmt.Println("  No mill records for this month.")
			fmt.Println()
			return nil
		}

		fmt.Println(cli.RenderKeyValues([][2]string{
			{"Income", cli.FormatCurrency(totals.TotalIncome)},
			{"Expenses", cli.FormatCurrency(totals.TotalExpenses)},
			{"Savings", cli.FormatCurrency(totals.TotalSavings)},
			{"Net balance", cli.Signed(totals.NetBalance)},
			{"Repair fund (10% suggestion)", cli.FormatCurrency(totals.RepairFund)},
			{"Days recorded", fmt.Sprintf("%d (%d entries)", totals.Days, totals.Records)},
		}))

		days := pipeline.AggregateDays(records, month, year)
		rows := make([][]string, 0, len(days))
		spark := make([]float64, len(days))
		for i, d := range days {
			spark[len(days)-1-i] = d.Income.Float()
			if d.Records == 0 {
				continue
			}
			rows = append(rows, []string{
				cli.FormatShortDate(d.Date),
				cli.FormatNumber(int64(d.Records)),
				cli.FormatAmount(d.Income),
				cli.FormatAmount(d.Expenses),
				cli.FormatAmount(d.Savings),
				cli.FormatAmount(d.Balance),
			})
		}
		fmt.Printf("  Daily income  %s\n\n", cli.RenderSparkline(spark))

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By Day",
			Headers: []string{"Date", "Entries", "Income", "Expenses", "Savings", "Balance"},
			Rows:    rows,
			Footer: []string{
				"TOTAL",
				cli.FormatNumber(int64(totals.Records)),
				cli.FormatAmount(totals.TotalIncome),
				cli.FormatAmount(totals.TotalExpenses),
				cli.FormatAmount(totals.TotalSavings),
				cli.FormatAmount(totals.NetBalance),
			},
		}))

		groups := pipeline.AggregateExpenses(records, month, year)
		if len(groups) > 0 {
			fmt.Println("  Expenses")
			labelW := 0
			for _, g := range groups {
				labelW = max(labelW, len(g.Description))
			}
			labelW = min(labelW, 20)
			top := groups[0].Amount.Float()
			for _, g := range groups {
				fmt.Printf("%s  %s  %s\n",
					cli.RenderHorizontalBar(g.Description, labelW, g.Amount.Float(), top, 30),
					cli.FormatCurrency(g.Amount),
					cli.Muted(cli.FormatPercent(g.Share)))
			}
			fmt.Println()
		}
		return nil
	})
}

// millInput is the raw text of a mill entry, from flags or the form.
type millInput struct {
	Date        string
	Income      string
	ExpenseDesc string
	Expense     string
	Electricity string
	Savings     string
	Notes       string
}

// record validates the date and amounts. Empty amounts are zero.
func (in millInput) record() (model.MillRecord, error) {
	day := today()
	if strings.TrimSpace(in.Date) != "" {
		t, err := model.ParseDay(in.Date)
		if err != nil {
			return model.MillRecord{}, err
		}
		day = model.Day(t)
	}
	rec := model.MillRecord{
		ID:                 model.NewID(),
		Date:               day,
		ExpenseDescription: strings.TrimSpace(in.ExpenseDesc),
		Notes:              strings.TrimSpace(in.Notes),
	}
	for _, f := range []struct {
		name string
		raw  string
		dst  *model.Money
	}{
		{"income", in.Income, &rec.Income},
		{"expense", in.Expense, &rec.ExpenseAmount},
		{"electricity", in.Electricity, &rec.Electricity},
		{"savings", in.Savings, &rec.Savings},
	} {
		m, err := amountField(f.name, f.raw)
		if err != nil {
			return model.MillRecord{}, err
		}
		*f.dst = m
	}
	return rec, nil
}
