// Package tui provides the interactive Bubble Tea dashboard for waniala.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// BooksLoadedMsg is sent when the initial load of the collections finishes.
type BooksLoadedMsg struct {
	Books    *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports how many collections have loaded.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshBooksMsg is sent when a background reload completes.
type RefreshBooksMsg struct {
	Books    *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// savedMsg reports the outcome of a write to the store.
type savedMsg struct {
	text string
	err  error
}

// App is the root Bubble Tea model.
type App struct {
	st  *store.Store
	cfg config.Config
	log *zap.Logger
	now func() time.Time

	// Data
	books    *pipeline.LoadResult
	loaded   bool
	loadTime time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Derived from books on every load
	dash       model.Dashboard
	monthDays  []model.DayTotals // current month, newest first
	monthSpend []model.ExpenseGroup
	rentals    []model.RentalRecord // sorted, search and status applied
	summaries  []model.MonthlySummary

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool

	// Per-tab state
	mill     millState
	rent     rentalsState
	sums     summariesState
	settings settingsState

	// Active modal form (entry, rental, confirm or first-run setup)
	form      *huh.Form
	formKind  formKind
	formVals  *formValues
	needSetup bool

	// Loading, with progress streamed over loadSub
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	writeTimeout     = 15 * time.Second
)

// NewApp creates a new TUI app model over an opened store.
func NewApp(st *store.Store, cfg config.Config, logger *zap.Logger) App {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	now := time.Now()
	return App{
		st:              st,
		cfg:             cfg,
		log:             logger,
		now:             time.Now,
		autoRefresh:     cfg.Dashboard.AutoRefresh,
		refreshInterval: cfg.RefreshInterval(),
		needSetup:       !config.Exists(),
		mill:            millState{month: now.Month(), year: now.Year()},
		rent:            newRentalsState(),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadBooksCmd(a.st, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute derives every view's figures from the loaded books.
func (a *App) recompute() {
	if a.books == nil {
		return
	}
	now := a.now()
	b := a.books

	a.dash = pipeline.Dashboard(b.Mill, b.Rentals, b.RepairFund, now)
	a.monthDays = pipeline.AggregateDays(b.Mill, now.Month(), now.Year())
	a.monthSpend = pipeline.AggregateExpenses(b.Mill, now.Month(), now.Year())
	a.rentals = pipeline.FilterRentals(pipeline.SortRentalsByRoom(b.Rentals), a.rent.query, a.rent.filter)
	a.summaries = pipeline.SortSummariesNewestFirst(b.Summaries)

	a.mill.recompute(b.Mill)
	a.rent.cursor = clampCursor(a.rent.cursor, len(a.rentals))
	a.sums.cursor = clampCursor(a.sums.cursor, len(a.summaries))
}

func clampCursor(cursor, n int) int {
	return max(0, min(cursor, n-1))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case BooksLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.setStatus("load failed: "+msg.Err.Error(), true)
			a.books = &pipeline.LoadResult{}
		} else {
			a.books = msg.Books
		}
		a.recompute()

		if a.needSetup {
			return a, a.openForm(formSetup, newSetupValues(a.cfg))
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshBooksMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.log.Warn("refresh failed", zap.Error(msg.Err))
			return a, nil
		}
		a.books = msg.Books
		a.loadTime = msg.LoadTime
		a.recompute()
		return a, nil

	case savedMsg:
		if msg.err != nil {
			a.log.Error("write failed", zap.Error(msg.err))
			a.setStatus(msg.err.Error(), true)
			return a, nil
		}
		a.setStatus(msg.text, false)
		a.refreshing = true
		return a, refreshBooksCmd(a.st)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.form == nil {
			if a.now().Sub(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshBooksCmd(a.st))
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the active form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// moveCursor moves the list cursor of the active tab by delta.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case components.TabMill:
		a.mill.cursor = clampCursor(a.mill.cursor+delta, len(a.mill.days))
	case components.TabRentals:
		a.rent.cursor = clampCursor(a.rent.cursor+delta, len(a.rentals))
	case components.TabSummaries:
		a.sums.cursor = clampCursor(a.sums.cursor+delta, len(a.summaries))
	case components.TabSettings:
		a.settings.cursor = clampCursor(a.settings.cursor+delta, settingsFieldCount)
	}
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// Forms intercept all keys; esc closes them.
	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			return a, nil
		}
		return a.updateForm(msg)
	}

	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabRentals && a.rent.searching {
		return a.updateRentalsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// A key press clears the last action's message.
	a.status = ""

	switch key {
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	}

	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case components.TabOverview:
		handled, cmd = a.overviewKey(key)
	case components.TabMill:
		handled, cmd = a.millKey(key)
	case components.TabRentals:
		handled, cmd = a.rentalsKey(key)
	case components.TabSummaries:
		handled, cmd = a.summariesKey(key)
	case components.TabSettings:
		handled, cmd = a.settingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshBooksCmd(a.st)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		auto := a.autoRefresh
		if err := a.saveConfig(func(c *config.Config) { c.Dashboard.AutoRefresh = auto }); err != nil {
			a.setStatus("saving config: "+err.Error(), true)
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

// saveConfig applies fn to the on-disk config, saves it, and mirrors the
// change into the running config. Environment overrides are not persisted.
func (a *App) saveConfig(fn func(*config.Config)) error {
	onDisk, err := config.LoadFile(config.ConfigPath())
	if err != nil {
		return err
	}
	fn(&onDisk)
	fn(&a.cfg)
	return config.Save(onDisk)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  waniala needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ " + a.cfg.General.BusinessName))
	b.WriteString(subtitleStyle.Render(" · Posho Mill & Rentals"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.progressMax > 0 {
		b.WriteString(subtitleStyle.Render(" Loading books\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), 32))
	} else {
		b.WriteString(subtitleStyle.Render(" Opening " + a.backendName() + "..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o m n u x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists"},
			{"[ ]", "Previous / Next month (Mill)"},
		}},
		{"Books", [][2]string{
			{"a", "Add mill entry / rental"},
			{"e", "Quick expense (Mill) / Edit rental"},
			{"t space", "Toggle rent paid"},
			{"d", "Delete rental"},
			{"/ f", "Search / Filter rentals"},
			{"s", "Save monthly summary"},
			{"F", "Adjust repair fund (Overview)"},
		}},
		{"General", [][2]string{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"Esc", "Close form / Cancel"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar plus business and month line
	titleStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	titleRow := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(
		titleStyle.Render(" ") + accentStyle.Render(a.cfg.General.BusinessName) +
			titleStyle.Render(" │ "+a.now().Format("Monday 2 January 2006")))
	header := components.RenderTabBar(a.activeTab, w) + "\n" + titleRow

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Backend:     a.backendName(),
		DataAge:     formatAge(a.lastRefresh, a.now()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Message:     a.status,
		Error:       a.statusErr,
	})

	// 3. Content zone height
	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	// 4. Tab content
	var content string
	switch a.activeTab {
	case components.TabOverview:
		content = a.renderOverviewTab(cw)
	case components.TabMill:
		content = a.renderMillTab(cw, contentH)
	case components.TabRentals:
		content = a.renderRentalsTab(cw, contentH)
	case components.TabSummaries:
		content = a.renderSummariesTab(cw, contentH)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Exactly contentH lines, each filled with background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) backendName() string {
	if a.cfg.Store.Backend == "" {
		return store.KindSQLite
	}
	return strings.ToLower(a.cfg.Store.Backend)
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadBooksCmd loads every collection in a background goroutine, streaming
// ProgressMsg updates and a final BooksLoadedMsg through sub.
func loadBooksCmd(st *store.Store, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			// Non-blocking send; a skipped update is caught up by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			books, err := pipeline.LoadAll(context.Background(), st, progressFn)
			sub <- BooksLoadedMsg{Books: books, LoadTime: time.Since(start), Err: err}
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshBooksCmd reloads the collections in the background without progress UI.
func refreshBooksCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		books, err := pipeline.LoadAll(ctx, st, nil)
		return RefreshBooksMsg{Books: books, LoadTime: time.Since(start), Err: err}
	}
}

// writeCmd runs a store write off the UI goroutine and reports text on success.
func writeCmd(st *store.Store, text string, fn func(context.Context, *store.Store) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := fn(ctx, st); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{text: text}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact X-axis labels for a day series.
// First label: month abbreviation (e.g. "Jan"); the rest are day numbers.
// days is sorted newest-first; labels are returned oldest-left.
func chartDateLabels(days []model.DayTotals) []string {
	n := len(days)
	labels := make([]string, n)
	for i, d := range days {
		pos := n - 1 - i
		dt, err := model.ParseDay(d.Date)
		switch {
		case err != nil:
			labels[pos] = "?"
		case pos == 0:
			labels[pos] = dt.Format("Jan")
		default:
			labels[pos] = strconv.Itoa(dt.Day())
		}
	}
	return labels
}

// chartSeries returns the days up to today, oldest first, as shillings.
func chartSeries(days []model.DayTotals, today string, pick func(model.DayTotals) model.Money) ([]model.DayTotals, []float64) {
	var kept []model.DayTotals
	for _, d := range days {
		if d.Date <= today {
			kept = append(kept, d)
		}
	}
	values := make([]float64, len(kept))
	for i, d := range kept {
		values[len(kept)-1-i] = pick(d).Float()
	}
	return kept, values
}

func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	secs := int(now.Sub(t).Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds ago", max(0, secs))
	}
	return fmt.Sprintf("%dm ago", secs/60)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
