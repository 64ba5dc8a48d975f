// Package cmd implements the waniala CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/logging"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagBackend string
	flagDB      string
	flagDataDir string
	flagEnvFile string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "waniala",
	Short:        "Posho mill and rentals bookkeeping",
	Long:         "Record posho mill takings and expenses, track room rents, and keep the repair fund.",
	RunE:         runOverview,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Storage backend (sqlite, file, memory, mongo, unavailable)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory for the file backend")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// loadConfig reads the config file, environment and flags, in that order
// of increasing precedence.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return config.DefaultConfig(), err
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Store.Backend = flagBackend
	}
	if flagDB != "" {
		cfg.Store.SQLitePath = flagDB
	}
	if flagDataDir != "" {
		cfg.Store.FileDir = flagDataDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", config.ConfigPath(), err)
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	logger, err := logging.New(flagVerbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore is the shared storage path used by all commands. The caller
// must Close the returned store.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	logger := newLogger()
	opts := cfg.StoreOptions()
	backend, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", opts.Kind, err)
	}
	logger.Debug("store opened", zap.String("backend", opts.Kind))
	return store.New(backend, logging.Named(logger, "store")), nil
}

// withStore loads the config, opens the store and runs fn.
func withStore(fn func(ctx context.Context, cfg config.Config, st *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return fn(ctx, cfg, st)
}

// loadBooks reads every collection, reporting progress on stderr.
func loadBooks(ctx context.Context, st *store.Store) (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if flagQuiet || logging.Quiet() {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Loading [%d/%d]", current, total)
		if current == total {
			fmt.Fprint(os.Stderr, "\r                \r")
		}
	}
	return pipeline.LoadAll(ctx, st, progressFn)
}

func today() string {
	return model.Day(time.Now())
}

// monthFlags resolves --month/--year, defaulting to the current month.
func monthFlags(month string, year int) (time.Month, int, error) {
	now := time.Now()
	m := now.Month()
	if month != "" {
		parsed, err := model.ParseMonth(month)
		if err != nil {
			return 0, 0, err
		}
		m = parsed
	}
	if year == 0 {
		year = now.Year()
	}
	return m, year, nil
}
