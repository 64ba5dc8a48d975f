// Package config loads and saves waniala settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/store"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WANIALA_"

// Config holds all waniala configuration.
type Config struct {
	General       GeneralConfig    `toml:"general"`
	Store         StoreConfig      `toml:"store"`
	Dashboard     DashboardConfig  `toml:"dashboard"`
	Daemon        DaemonConfig     `toml:"daemon"`
	Appearance    AppearanceConfig `toml:"appearance"`
	QuickExpenses []QuickExpense   `toml:"quick_expenses"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	BusinessName string `toml:"business_name" env:"BUSINESS_NAME"`
}

// StoreConfig selects where the collections are kept.
type StoreConfig struct {
	Backend       string `toml:"backend" env:"BACKEND"`
	SQLitePath    string `toml:"sqlite_path,omitempty" env:"DB"`
	FileDir       string `toml:"file_dir,omitempty" env:"DATA_DIR"`
	MongoURI      string `toml:"mongo_uri,omitempty" env:"MONGO_URI"`
	MongoDatabase string `toml:"mongo_database,omitempty" env:"MONGO_DATABASE"`
}

// DashboardConfig holds TUI refresh settings.
type DashboardConfig struct {
	RefreshSecs int  `toml:"refresh_secs" env:"REFRESH_SECS"`
	AutoRefresh bool `toml:"auto_refresh" env:"AUTO_REFRESH"`
}

// DaemonConfig holds background daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" env:"DAEMON_ADDR"`
	IntervalSecs int    `toml:"interval_secs" env:"DAEMON_INTERVAL_SECS"`
	SummaryCron  string `toml:"summary_cron" env:"SUMMARY_CRON"`
	EventsBuffer int    `toml:"events_buffer,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"THEME"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			BusinessName: "Waniala",
		},
		Store: StoreConfig{
			Backend:       store.KindSQLite,
			MongoDatabase: "waniala",
		},
		Dashboard: DashboardConfig{
			RefreshSecs: 2,
			AutoRefresh: true,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSecs: 10,
			SummaryCron:  "5 0 1 * *",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		QuickExpenses: DefaultQuickExpenses(),
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "waniala")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "waniala")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "waniala")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "waniala")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies WANIALA_* environment overrides.
func Load() (Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A file that lists its own quick expenses replaces the defaults.
	cfg.QuickExpenses = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.QuickExpenses) == 0 {
		cfg.QuickExpenses = DefaultQuickExpenses()
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from WANIALA_* environment variables.
// Quick expenses are file-only.
func ApplyEnv(cfg *Config) error {
	opts := env.Options{Prefix: EnvPrefix}
	for _, section := range []any{&cfg.General, &cfg.Store, &cfg.Dashboard, &cfg.Daemon, &cfg.Appearance} {
		if err := env.ParseWithOptions(section, opts); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing
// file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	kind := strings.ToLower(c.Store.Backend)
	valid := kind == ""
	for _, k := range store.Kinds {
		if kind == k {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("store.backend %q: want one of %s", c.Store.Backend, strings.Join(store.Kinds, ", "))
	}
	if kind == store.KindMongo && c.Store.MongoURI == "" {
		return errors.New("store.mongo_uri is required for the mongo backend")
	}
	if c.Dashboard.RefreshSecs < 1 {
		return fmt.Errorf("dashboard.refresh_secs must be at least 1, got %d", c.Dashboard.RefreshSecs)
	}
	if c.Daemon.SummaryCron != "" {
		if _, err := cron.ParseStandard(c.Daemon.SummaryCron); err != nil {
			return fmt.Errorf("daemon.summary_cron: %w", err)
		}
	}
	return nil
}

// StoreOptions resolves the store settings into backend options, filling
// default paths under the data directory.
func (c Config) StoreOptions() store.Options {
	opts := store.Options{
		Kind:          c.Store.Backend,
		SQLitePath:    c.Store.SQLitePath,
		FileDir:       c.Store.FileDir,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
	if opts.SQLitePath == "" {
		opts.SQLitePath = filepath.Join(DataDir(), "waniala.db")
	}
	if opts.FileDir == "" {
		opts.FileDir = filepath.Join(DataDir(), "collections")
	}
	return opts
}

// RefreshInterval returns the dashboard refresh period, never below one second.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(max(1, c.Dashboard.RefreshSecs)) * time.Second
}
