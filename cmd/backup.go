package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/theirongolddev/waniala/internal/backup"
	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import all collections as one JSON file",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write every collection to FILE (default: a dated file in the backups directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the collections present in FILE",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupImport,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "Backups in the backups directory",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

func init() {
	backupCmd.AddCommand(backupExportCmd, backupImportCmd, backupListCmd)
	rootCmd.AddCommand(backupCmd)
}

func backupDir() string {
	return filepath.Join(config.DataDir(), "backups")
}

func runBackupExport(_ *cobra.Command, args []string) error {
	path := filepath.Join(backupDir(), backup.DefaultName(time.Now()))
	if len(args) == 1 {
		path = args[0]
	}

	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		sum, err := backup.ExportFile(ctx, st, path)
		if err != nil {
			return err
		}
		fmt.Printf("\n  Exported to %s\n", path)
		printBackupSummary(sum)
		return nil
	})
}

func runBackupImport(_ *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, _ config.Config, st *store.Store) error {
		sum, err := backup.ImportFile(ctx, st, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("\n  Imported %s\n", args[0])
		printBackupSummary(sum)
		return nil
	})
}

func printBackupSummary(sum backup.Summary) {
	fmt.Println(cli.RenderKeyValues([][2]string{
		{"Mill records", cli.FormatNumber(int64(sum.MillRecords))},
		{"Rentals", cli.FormatNumber(int64(sum.Rentals))},
		{"Monthly summaries", cli.FormatNumber(int64(sum.Summaries))},
		{"Repair fund (stored)", cli.FormatCurrency(sum.RepairFund)},
	}))
}

func runBackupList(_ *cobra.Command, _ []string) error {
	files, err := backup.ScanDir(backupDir())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("\n  No backups in %s\n\n", backupDir())
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.Name,
			cli.FormatNumber(f.Size),
			cli.FormatAge(f.ModTime, now),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   backupDir(),
		Headers: []string{"File", "Bytes", "Age"},
		Rows:    rows,
	}))
	return nil
}
