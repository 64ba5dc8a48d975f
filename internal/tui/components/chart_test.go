package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{1000, "1K"},
		{2500, "2.5K"},
		{1200000, "1.2M"},
	}
	for _, tt := range tests {
		if got := FormatChartLabel(tt.in); got != tt.want {
			t.Errorf("FormatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChartTickStepIsRound(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{5000, 1000},
		{12000, 2000},
		{3000, 500},
		{45, 5},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestSparklineLength(t *testing.T) {
	line := stripANSI(Sparkline([]float64{0, 1, 2, 3, 4}, theme.Active.Green))
	if n := len([]rune(line)); n != 5 {
		t.Fatalf("sparkline runes = %d, want 5", n)
	}
	if !strings.HasSuffix(line, "█") {
		t.Errorf("peak should render as a full block: %q", line)
	}
	if Sparkline(nil, theme.Active.Green) != "" {
		t.Error("empty sparkline should be empty")
	}
}

func TestBarChartFitsWidth(t *testing.T) {
	values := make([]float64, 31)
	labels := make([]string, 31)
	for i := range values {
		values[i] = float64((i % 7) * 400)
		labels[i] = FormatChartLabel(float64(i + 1))
	}
	out := BarChart(values, labels, theme.Active.Green, 60, 10)
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width = %d, exceeds 60", i, w)
		}
	}
	if !strings.Contains(stripANSI(out), "└") {
		t.Error("chart missing x axis")
	}
}

func TestHBarListScalesToPeak(t *testing.T) {
	out := HBarList([]BarItem{
		{Label: "Maize", Value: 2000, Note: "KSh 2,000"},
		{Label: "Charcoal", Value: 500, Note: "KSh 500"},
	}, theme.Active.Red, 50)
	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if strings.Count(lines[0], "█") <= strings.Count(lines[1], "█") {
		t.Errorf("larger value should draw a longer bar:\n%s", strings.Join(lines, "\n"))
	}
}

func TestCollectionBarColor(t *testing.T) {
	out := CollectionBar("Rent", 0.95, "KSh 9,500 of 10,000", 6, 20)
	if !strings.Contains(stripANSI(out), " 95%") {
		t.Errorf("collection bar missing percent: %q", stripANSI(out))
	}
	if clampPct(1.7) != 1 || clampPct(-1) != 0 {
		t.Error("clampPct does not clamp")
	}
}
