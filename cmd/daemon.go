package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/daemon"
	"github.com/theirongolddev/waniala/internal/logging"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonCron         string
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the bookkeeping daemon with HTTP/SSE endpoints and the monthly summary job",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

var daemonSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Ask the running daemon to save a monthly summary now",
	Args:  cobra.NoArgs,
	RunE:  runDaemonSnapshot,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "wanialad.pid")
	defaultLog := filepath.Join(config.DataDir(), "wanialad.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().StringVar(&flagDaemonCron, "summary-cron", "", `Monthly summary schedule, or "off" (default from config)`)
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonSnapshotCmd.Flags().StringVarP(&flagMonth, "month", "m", "", "Month name or number (default previous month)")
	daemonSnapshotCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default that of the month)")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd, daemonSnapshotCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonConfig merges the [daemon] config section with the command flags.
func daemonConfig(cfg config.Config) daemon.Config {
	dc := daemon.Config{
		Backend:      cfg.StoreOptions().Kind,
		Addr:         cfg.Daemon.Addr,
		Interval:     time.Duration(cfg.Daemon.IntervalSecs) * time.Second,
		EventsBuffer: cfg.Daemon.EventsBuffer,
		SummaryCron:  cfg.Daemon.SummaryCron,
	}
	if flagDaemonAddr != "" {
		dc.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		dc.Interval = flagDaemonInterval
	}
	if flagDaemonEventsBuffer > 0 {
		dc.EventsBuffer = flagDaemonEventsBuffer
	}
	if flagDaemonCron != "" {
		dc.SummaryCron = flagDaemonCron
	}
	return dc
}

// daemonAddr is the address a running daemon listens on: the state file
// first, then flags and config.
func daemonAddr() string {
	if st, err := pidFile().State(); err == nil && st.Addr != "" {
		return st.Addr
	}
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	cfg, _ := loadConfig()
	return cfg.Daemon.Addr
}

func pidFile() daemon.PIDFile {
	return daemon.PIDFile{Path: flagDaemonPIDFile}
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := pidFile().CheckFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-executes the current binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr())
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

// childArgs rewrites the command line for the detached child: --detach is
// dropped and the hidden --child marker added.
func childArgs(args []string) []string {
	out := slices.DeleteFunc(slices.Clone(args), func(a string) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	return append(out, "--child")
}

func runDaemonForeground() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dc := daemonConfig(cfg)

	logger, err := logging.NewDaemon("", flagVerbose)
	if err != nil {
		return fmt.Errorf("daemon logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pf := pidFile()
	if err := pf.Acquire(daemon.RuntimeState{
		PID:       os.Getpid(),
		Addr:      dc.Addr,
		StartedAt: time.Now(),
		Backend:   dc.Backend,
	}); err != nil {
		return err
	}
	defer pf.Release()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc := daemon.New(dc, st, logging.Named(logger, "daemon"))

	if !flagDaemonChild {
		fmt.Printf("  waniala daemon listening on http://%s\n", dc.Addr)
		fmt.Printf("  Polling the %s store every %s\n", dc.Backend, dc.Interval)
		fmt.Printf("  Stop with: waniala daemon stop --pid-file %s\n", flagDaemonPIDFile)
	}

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited", zap.Error(err))
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pid, err := pidFile().PID()
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}
	if !daemon.ProcessAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonAddr()
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := daemon.NewClient(addr)
	if err := client.Health(ctx); err != nil {
		fmt.Printf("  API health: %v\n", err)
		return nil
	}
	st, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	now := time.Now()
	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s (%s)\n", st.LastPollAt.Local().Format(time.RFC3339), cli.FormatAge(st.LastPollAt, now))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Backend: %s\n", st.Backend)
	if st.SummaryCron != "" {
		fmt.Printf("  Summary schedule: %s (last run %s)\n", st.SummaryCron, cli.FormatAge(st.LastSummaryAt, now))
	}
	fmt.Println()

	s := st.Summary
	fmt.Println(cli.RenderKeyValues([][2]string{
		{"Month", cli.FormatMonth(s.Month, s.Year)},
		{"Mill income", cli.FormatCurrency(s.MonthIncome)},
		{"Mill net balance", cli.Signed(s.MonthNetBalance)},
		{"Rent collected", fmt.Sprintf("%s of %s", cli.FormatCurrency(s.RentCollected), cli.FormatCurrency(s.RentExpected))},
		{"Repair fund (stored)", cli.FormatCurrency(s.StoredRepairFund)},
	}))
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}

	events, err := client.Events(ctx)
	if err == nil && len(events) > 0 {
		fmt.Println("  Recent events")
		for _, ev := range events[max(0, len(events)-5):] {
			line := fmt.Sprintf("    #%d %-14s %s", ev.ID, ev.Type, cli.FormatAge(ev.Timestamp, now))
			if ev.Message != "" {
				line += "  " + ev.Message
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := pidFile().Stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}

func runDaemonSnapshot(_ *cobra.Command, _ []string) error {
	month, year := pipeline.PreviousMonth(time.Now())
	if flagMonth != "" || flagYear != 0 {
		var err error
		if month, year, err = monthFlags(flagMonth, flagYear); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sum, err := daemon.NewClient(daemonAddr()).SaveSummary(ctx, month, year)
	if err != nil {
		if errors.Is(err, daemon.ErrNotRunning) {
			return fmt.Errorf("%w; use `waniala summary --save` instead", err)
		}
		return err
	}
	fmt.Printf("\n  Daemon saved the summary for %s %d\n", sum.Month, sum.Year)
	printSummary(*sum)
	return nil
}

func printSummary(s model.MonthlySummary) {
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    summaryRows(s),
	}))
}
