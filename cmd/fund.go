package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/spf13/cobra"
)

var fundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Show the stored repair fund",
	Args:  cobra.NoArgs,
	RunE:  runFundShow,
}

var fundShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored repair fund",
	Args:  cobra.NoArgs,
	RunE:  runFundShow,
}

var fundAddCmd = &cobra.Command{
	Use:   "add AMOUNT",
	Short: "Add to the stored repair fund (negative to withdraw)",
	Example: `  waniala fund add 1500
  waniala fund add -- -500`,
	Args: cobra.ExactArgs(1),
	RunE: runFundAdd,
}

func init() {
	fundCmd.AddCommand(fundShowCmd, fundAddCmd)
	rootCmd.AddCommand(fundCmd)
}

func runFundShow(_ *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		now := time.Now()
		suggested := pipeline.MonthlyTotals(st.MillRecords(ctx), now.Month(), now.Year()).RepairFund

		fmt.Println()
		fmt.Println(cli.RenderKeyValues([][2]string{
			{"Repair fund (stored)", cli.FormatCurrency(st.RepairFund(ctx))},
			{"Repair fund (10% suggestion)", fmt.Sprintf("%s  %s", cli.FormatCurrency(suggested), cli.Muted(cli.FormatMonth(now.Month(), now.Year())))},
		}))
		return nil
	})
}

func runFundAdd(_ *cobra.Command, args []string) error {
	amount, err := model.ParseMoney(args[0])
	if err != nil {
		return err
	}
	if amount == 0 {
		return errors.New("amount must not be zero")
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		before := st.RepairFund(ctx)
		if err := st.AddToRepairFund(ctx, amount); err != nil {
			return err
		}
		after := st.RepairFund(ctx)
		fmt.Printf("\n  Repair fund (stored): %s  %s\n\n", cli.FormatCurrency(after), cli.Muted(cli.FormatDelta(after, before)))
		return nil
	})
}
