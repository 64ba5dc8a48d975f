package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagRentRoom     string
	flagRentTenant   string
	flagRentAmount   string
	flagRentDatePaid string
	flagRentStatus   string
	flagRentSearch   string
	flagRentFilter   string
	flagRentYes      bool
)

var rentCmd = &cobra.Command{
	Use:     "rent",
	Aliases: []string{"rentals"},
	Short:   "Room rentals",
}

var rentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a room (interactive when no flags are given)",
	Args:  cobra.NoArgs,
	RunE:  runRentAdd,
}

var rentEditCmd = &cobra.Command{
	Use:   "edit ROOM|ID",
	Short: "Edit a room's rental record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRentEdit,
}

var rentToggleCmd = &cobra.Command{
	Use:   "toggle ROOM|ID",
	Short: "Flip a room between Paid and Pending",
	Args:  cobra.ExactArgs(1),
	RunE:  runRentToggle,
}

var rentDeleteCmd = &cobra.Command{
	Use:   "delete ROOM|ID",
	Short: "Remove a room's rental record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRentDelete,
}

var rentListCmd = &cobra.Command{
	Use:   "list",
	Short: "Rental records with collection totals",
	Args:  cobra.NoArgs,
	RunE:  runRentList,
}

func init() {
	for _, c := range []*cobra.Command{rentAddCmd, rentEditCmd} {
		f := c.Flags()
		f.StringVar(&flagRentRoom, "room", "", "Room number")
		f.StringVar(&flagRentTenant, "tenant", "", "Tenant name")
		f.StringVar(&flagRentAmount, "rent", "", "Rent amount")
		f.StringVar(&flagRentDatePaid, "date-paid", "", "Date paid YYYY-MM-DD (default today)")
		f.StringVar(&flagRentStatus, "status", "", "Paid or Pending (default Pending)")
	}
	rentDeleteCmd.Flags().BoolVarP(&flagRentYes, "yes", "y", false, "Do not ask for confirmation")
	rentListCmd.Flags().StringVarP(&flagRentSearch, "search", "s", "", "Filter by room or tenant (substring)")
	rentListCmd.Flags().StringVar(&flagRentFilter, "status", pipeline.StatusFilterAll, "all, paid or pending")

	rentCmd.AddCommand(rentAddCmd, rentEditCmd, rentToggleCmd, rentDeleteCmd, rentListCmd)
	rootCmd.AddCommand(rentCmd)
}

// rentalInput is the raw text of a rental record, from flags or the form.
type rentalInput struct {
	Room     string
	Tenant   string
	Rent     string
	DatePaid string
	Status   string
}

func inputFromRental(r model.RentalRecord) rentalInput {
	return rentalInput{
		Room:     r.RoomNumber,
		Tenant:   r.TenantName,
		Rent:     r.RentAmount.Decimal(),
		DatePaid: r.DatePaid,
		Status:   string(r.PaymentStatus),
	}
}

// overlayFlags replaces fields of in with the flags that were set.
func overlayFlags(cmd *cobra.Command, in rentalInput) rentalInput {
	f := cmd.Flags()
	if f.Changed("room") {
		in.Room = flagRentRoom
	}
	if f.Changed("tenant") {
		in.Tenant = flagRentTenant
	}
	if f.Changed("rent") {
		in.Rent = flagRentAmount
	}
	if f.Changed("date-paid") {
		in.DatePaid = flagRentDatePaid
	}
	if f.Changed("status") {
		in.Status = flagRentStatus
	}
	return in
}

// apply validates in and writes it over r.
func (in rentalInput) apply(r model.RentalRecord) (model.RentalRecord, error) {
	room := strings.TrimSpace(in.Room)
	if room == "" {
		return r, errors.New("room number is required")
	}
	status := model.StatusPending
	if strings.TrimSpace(in.Status) != "" {
		s, err := model.ParseStatus(in.Status)
		if err != nil {
			return r, err
		}
		status = s
	}
	day := today()
	if strings.TrimSpace(in.DatePaid) != "" {
		t, err := model.ParseDay(in.DatePaid)
		if err != nil {
			return r, err
		}
		day = model.Day(t)
	}
	rent, err := amountField("rent", in.Rent)
	if err != nil {
		return r, err
	}
	r.RoomNumber = room
	r.TenantName = strings.TrimSpace(in.Tenant)
	r.RentAmount = rent
	r.DatePaid = day
	r.PaymentStatus = status
	return r, nil
}

// resolveRental finds a record by id, unique id prefix, or room number.
func resolveRental(records []model.RentalRecord, key string) (model.RentalRecord, error) {
	key = strings.TrimSpace(key)
	var matches []model.RentalRecord
	for _, r := range records {
		if r.ID == key {
			return r, nil
		}
		if strings.EqualFold(r.RoomNumber, key) || (len(key) >= 4 && strings.HasPrefix(r.ID, key)) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return model.RentalRecord{}, fmt.Errorf("no rental matches %q", key)
	case 1:
		return matches[0], nil
	default:
		return model.RentalRecord{}, fmt.Errorf("%q matches %d rentals; use the id", key, len(matches))
	}
}

func runRentAdd(cmd *cobra.Command, _ []string) error {
	in := rentalInput{DatePaid: today(), Status: string(model.StatusPending)}
	if !localFlagsChanged(cmd) {
		var err error
		if in, err = promptRental(in); err != nil {
			return err
		}
	} else {
		in = overlayFlags(cmd, in)
	}

	rec, err := in.apply(model.RentalRecord{ID: model.NewID()})
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		if err := st.SaveRental(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("\n  Added %s (%s) at %s, %s\n\n", rec.RoomNumber, rec.TenantName, cli.FormatCurrency(rec.RentAmount), rec.PaymentStatus)
		return nil
	})
}

func runRentEdit(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		existing, err := resolveRental(st.RentalRecords(ctx), args[0])
		if err != nil {
			return err
		}

		in := inputFromRental(existing)
		if !localFlagsChanged(cmd) {
			if in, err = promptRental(in); err != nil {
				return err
			}
		} else {
			in = overlayFlags(cmd, in)
		}

		rec, err := in.apply(existing)
		if err != nil {
			return err
		}
		if err := st.SaveRental(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("\n  Updated %s\n\n", rec.RoomNumber)
		return nil
	})
}

func runRentToggle(_ *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		existing, err := resolveRental(st.RentalRecords(ctx), args[0])
		if err != nil {
			return err
		}
		rec := pipeline.ToggleStatus(existing, today())
		if err := st.SaveRental(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("\n  %s is now %s\n\n", rec.RoomNumber, cli.Status(rec.PaymentStatus))
		return nil
	})
}

func runRentDelete(_ *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		existing, err := resolveRental(st.RentalRecords(ctx), args[0])
		if err != nil {
			return err
		}

		if !flagRentYes {
			confirmed := false
			err := runForm(huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %s (%s)?", existing.RoomNumber, existing.TenantName)).
					Value(&confirmed),
			)))
			if err != nil {
				return err
			}
			if !confirmed {
				return errCanceled
			}
		}

		if err := st.DeleteRental(ctx, existing.ID); err != nil {
			return err
		}
		fmt.Printf("\n  Deleted %s\n\n", existing.RoomNumber)
		return nil
	})
}

func runRentList(_ *cobra.Command, _ []string) error {
	status := strings.ToLower(flagRentFilter)
	switch status {
	case pipeline.StatusFilterAll, pipeline.StatusFilterPaid, pipeline.StatusFilterPending:
	default:
		return fmt.Errorf("--status %q: want all, paid or pending", flagRentFilter)
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		all := st.RentalRecords(ctx)
		if len(all) == 0 {
			fmt.Println("\n  No rentals recorded. Add one with `waniala rent add`.")
			return nil
		}
		totals := pipeline.RentalTotals(all)
		shown := pipeline.SortRentalsByRoom(pipeline.FilterRentals(all, flagRentSearch, status))

		fmt.Println()
		fmt.Println(cli.RenderTitle("RENTALS"))
		fmt.Println()

		rows := make([][]string, 0, len(shown))
		for _, r := range shown {
			rows = append(rows, []string{
				r.RoomNumber,
				cli.Truncate(r.TenantName, 24),
				cli.FormatAmount(r.RentAmount),
				cli.FormatShortDate(r.DatePaid),
				cli.Status(r.PaymentStatus),
				cli.Muted(shortID(r.ID)),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Room", "Tenant", "Rent", "Paid On", "Status", "ID"},
			Rows:    rows,
		}))
		if len(shown) == 0 {
			fmt.Println("  No rentals match the filter.")
			fmt.Println()
		}

		fmt.Println(cli.RenderKeyValues([][2]string{
			{"Expected", cli.FormatCurrency(totals.TotalExpected)},
			{"Collected", cli.FormatCurrency(totals.TotalCollected)},
			{"Pending", cli.FormatCurrency(totals.Pending)},
			{"Collection", cli.RenderProgressBar(totals.CollectionRate(), 20)},
		}))
		return nil
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
