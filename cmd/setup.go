package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/store"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	refresh := fmt.Sprintf("%d", cfg.Dashboard.RefreshSecs)
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to waniala").
				Description("Bookkeeping for the posho mill and the rentals.\nThese settings are saved to "+config.ConfigPath()),
			huh.NewInput().Title("Business name").Value(&cfg.General.BusinessName),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should records be kept?").
				Options(
					huh.NewOption("SQLite database (recommended)", store.KindSQLite),
					huh.NewOption("JSON files in a folder", store.KindFile),
					huh.NewOption("MongoDB", store.KindMongo),
				).
				Value(&cfg.Store.Backend),
		),
		huh.NewGroup(
			huh.NewInput().Title("MongoDB URI").Placeholder("mongodb://localhost:27017").
				Value(&cfg.Store.MongoURI).
				Validate(func(s string) error {
					if _, err := url.Parse(s); err != nil || s == "" {
						return errors.New("enter a mongodb:// URI")
					}
					return nil
				}),
			huh.NewInput().Title("Database").Value(&cfg.Store.MongoDatabase),
		).WithHideFunc(func() bool { return cfg.Store.Backend != store.KindMongo }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Color theme").Options(themeOpts...).Value(&cfg.Appearance.Theme),
			huh.NewInput().Title("Dashboard refresh (seconds)").Value(&refresh).
				Validate(func(s string) error {
					var n int
					if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
						return errors.New("enter a whole number of seconds, at least 1")
					}
					return nil
				}),
		),
	)
	if err := runForm(form); err != nil {
		return err
	}
	_, _ = fmt.Sscanf(refresh, "%d", &cfg.Dashboard.RefreshSecs)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `waniala setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
