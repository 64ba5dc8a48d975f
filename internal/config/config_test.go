package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != store.KindSQLite || cfg.Dashboard.RefreshSecs != 2 {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.QuickExpenses) != 6 {
		t.Errorf("quick expenses = %d, want 6", len(cfg.QuickExpenses))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Store.Backend = store.KindFile
	cfg.Dashboard.RefreshSecs = 5
	cfg.QuickExpenses = []QuickExpense{{Name: "Diesel", Amount: 750.5}}

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Store.Backend != store.KindFile || got.Dashboard.RefreshSecs != 5 {
		t.Errorf("loaded = %+v", got)
	}
	if len(got.QuickExpenses) != 1 || got.QuickExpenses[0].DefaultAmount() != 75050 {
		t.Errorf("quick expenses = %+v", got.QuickExpenses)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store\nbackend="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted malformed TOML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WANIALA_BACKEND", "memory")
	t.Setenv("WANIALA_REFRESH_SECS", "7")
	t.Setenv("WANIALA_DAEMON_ADDR", "127.0.0.1:9999")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != "memory" || cfg.Dashboard.RefreshSecs != 7 || cfg.Daemon.Addr != "127.0.0.1:9999" {
		t.Errorf("after env = %+v", cfg)
	}
	// Unset variables leave values alone.
	if cfg.Daemon.SummaryCron != "5 0 1 * *" {
		t.Errorf("SummaryCron = %q, want default", cfg.Daemon.SummaryCron)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WANIALA_THEME=savanna\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WANIALA_THEME", "")
	_ = os.Unsetenv("WANIALA_THEME")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WANIALA_THEME"); got != "savanna" {
		t.Errorf("WANIALA_THEME = %q", got)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	tests := []func(*Config){
		func(c *Config) { c.Store.Backend = "redis" },
		func(c *Config) { c.Store.Backend = store.KindMongo },
		func(c *Config) { c.Dashboard.RefreshSecs = 0 },
		func(c *Config) { c.Daemon.SummaryCron = "every tuesday" },
	}
	for i, mutate := range tests {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: Validate accepted %+v", i, cfg)
		}
	}
}

func TestStoreOptionsDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	opts := DefaultConfig().StoreOptions()
	if opts.SQLitePath != "/tmp/xdg/waniala/waniala.db" {
		t.Errorf("SQLitePath = %q", opts.SQLitePath)
	}
	if opts.FileDir != "/tmp/xdg/waniala/collections" {
		t.Errorf("FileDir = %q", opts.FileDir)
	}
}

func TestRefreshIntervalFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dashboard.RefreshSecs = 0
	if got := cfg.RefreshInterval(); got != time.Second {
		t.Errorf("RefreshInterval = %v, want 1s", got)
	}
}

func TestQuickExpenses(t *testing.T) {
	cfg := DefaultConfig()
	q, ok := cfg.LookupQuickExpense("charcoal")
	if !ok || q.DefaultAmount() != model.Shillings(500) {
		t.Errorf("charcoal = %+v, %v", q, ok)
	}
	other, ok := cfg.LookupQuickExpense("Other")
	if !ok || other.DefaultAmount() != 0 {
		t.Errorf("other = %+v, %v", other, ok)
	}

	r := QuickExpenseRecord("Transport", model.Shillings(300), "2024-01-15")
	if r.Income != 0 || r.Notes != QuickExpenseNote || r.ExpenseAmount != model.Shillings(300) || r.ID == "" {
		t.Errorf("record = %+v", r)
	}
}
