package cmd

import (
	"fmt"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.StoreOptions()

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Business name: %s\n", cfg.General.BusinessName)
	fmt.Printf("    Currency:      %s\n", cli.CurrencyPrefix)
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Backend: %s\n", opts.Kind)
	switch opts.Kind {
	case "", "sqlite":
		fmt.Printf("    Database: %s\n", opts.SQLitePath)
	case "file":
		fmt.Printf("    Directory: %s\n", opts.FileDir)
	case "mongo":
		fmt.Printf("    URI:      %s\n", maskURI(opts.MongoURI))
		fmt.Printf("    Database: %s\n", opts.MongoDatabase)
	}
	fmt.Println()

	fmt.Println("  [Dashboard]")
	fmt.Printf("    Refresh:      %s\n", cfg.RefreshInterval())
	fmt.Printf("    Auto refresh: %v\n", cfg.Dashboard.AutoRefresh)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:      %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll every:   %ds\n", cfg.Daemon.IntervalSecs)
	fmt.Printf("    Summary cron: %s\n", cfg.Daemon.SummaryCron)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Quick expenses]")
	for _, q := range cfg.QuickExpenses {
		amount := "ask"
		if q.DefaultAmount() > 0 {
			amount = cli.FormatCurrency(q.DefaultAmount())
		}
		fmt.Printf("    %-12s %s\n", q.Name, amount)
	}
	fmt.Println()

	fmt.Println("  Run `waniala setup` to reconfigure.")
	return nil
}
