package cmd

import (
	"testing"

	"github.com/theirongolddev/waniala/internal/model"

	"github.com/spf13/cobra"
)

func TestLocalFlagsChangedIgnoresInheritedFlags(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"add"}, false},
		{[]string{"--backend", "file", "add"}, false},
		{[]string{"-v", "add"}, false},
		{[]string{"add", "--income", "500"}, true},
		{[]string{"--backend", "file", "add", "--notes", "x"}, true},
	}
	for _, tt := range tests {
		var got bool
		root := &cobra.Command{Use: "waniala"}
		root.PersistentFlags().String("backend", "", "")
		root.PersistentFlags().BoolP("verbose", "v", false, "")
		add := &cobra.Command{
			Use: "add",
			RunE: func(cmd *cobra.Command, _ []string) error {
				got = localFlagsChanged(cmd)
				return nil
			},
		}
		add.Flags().String("income", "", "")
		add.Flags().String("notes", "", "")
		root.AddCommand(add)

		root.SetArgs(tt.args)
		if err := root.Execute(); err != nil {
			t.Fatalf("Execute(%v): %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("localFlagsChanged(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestMillInputRecordValidatesAmounts(t *testing.T) {
	rec, err := millInput{Date: "2024-03-01", Income: "1,500", Electricity: ""}.record()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Income != model.Shillings(1500) || rec.Electricity != 0 {
		t.Errorf("record = %+v", rec)
	}

	for _, in := range []millInput{
		{Income: "1O00"},
		{Expense: "abc"},
		{Electricity: "1e30"},
		{Savings: "--5"},
	} {
		if _, err := in.record(); err == nil {
			t.Errorf("record(%+v) accepted a malformed amount", in)
		}
	}
	if _, err := (millInput{Date: "2024-02-30"}).record(); err == nil {
		t.Error("record accepted an impossible date")
	}
}

func TestRentalInputApplyValidatesRent(t *testing.T) {
	base := model.RentalRecord{ID: "r1"}
	r, err := rentalInput{Room: " Room 3 ", Rent: "4500", Status: "paid", DatePaid: "2024-03-02"}.apply(base)
	if err != nil {
		t.Fatal(err)
	}
	if r.RoomNumber != "Room 3" || r.RentAmount != model.Shillings(4500) || r.PaymentStatus != model.StatusPaid {
		t.Errorf("apply = %+v", r)
	}

	if _, err := (rentalInput{Room: "Room 3", Rent: "4,5OO"}).apply(base); err == nil {
		t.Error("apply accepted a malformed rent")
	}
	if _, err := (rentalInput{Rent: "100"}).apply(base); err == nil {
		t.Error("apply accepted an empty room")
	}
}
