package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// chartAxis is the y-axis layout of a bar chart.
type chartAxis struct {
	step        float64
	ceiling     float64
	intervals   int
	rowsPerTick int
}

func (ax chartAxis) rows() int { return ax.rowsPerTick * ax.intervals }

// newChartAxis picks a round tick step so that at most height/2 ticks fit.
func newChartAxis(maxVal float64, height int) chartAxis {
	if maxVal <= 0 {
		maxVal = 1
	}
	step := chartTickStep(maxVal)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(maxVal/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(maxVal/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	return chartAxis{
		step:        step,
		ceiling:     ceiling,
		intervals:   intervals,
		rowsPerTick: max(2, height/intervals),
	}
}

// BarChart renders a vertical bar chart of amounts in shillings with a
// labelled y-axis. Too many bars for the width are downsampled.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	ax := newChartAxis(peak, height)
	chartH := ax.rows()

	yLabelW := max(4, len(FormatChartLabel(ax.ceiling))+1)
	tickLabels := make(map[int]string, ax.intervals)
	for i := 1; i <= ax.intervals; i++ {
		tickLabels[i*ax.rowsPerTick] = FormatChartLabel(ax.step * float64(i))
	}

	chartW := max(5, width-yLabelW-1)
	values, labels, barW, gap := fitBars(values, labels, chartW)
	n := len(values)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	peakStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ax.ceiling * float64(row) / float64(chartH)
		rowBottom := ax.ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blankStyle.Render(strings.Repeat(" ", gap)))
			}
			style := barStyle
			if v == peak && peak > 0 {
				style = peakStyle
			}
			switch {
			case v >= rowTop:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(style.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blankStyle.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n && n > 0 {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// fitBars chooses bar and gap widths for chartW columns, sampling the
// series down when even two-column bars do not fit.
func fitBars(values []float64, labels []string, chartW int) ([]float64, []string, int, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(chartW, 6), 0
	}
	barW := (chartW - (n - 1)) / n
	if barW >= 2 {
		return values, labels, min(barW, 6), 1
	}

	keep := max(2, (chartW+1)/3)
	sampled := make([]float64, keep)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, keep)
	}
	for i := range sampled {
		src := i * (n - 1) / (keep - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels, 2, 1
}

// xAxisLabels lays labels under their bars, skipping any that would
// collide, and always keeps the last label.
func xAxisLabels(labels []string, pitch, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	n := len(labels)
	step := max(1, (n*6)/(axisLen+1))

	lastEnd := -1
	for i := 0; i < n; i += step {
		pos := i * pitch
		lbl := labels[i]
		if pos <= lastEnd || pos+len(lbl) > axisLen {
			continue
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	if n > 1 {
		lbl := labels[n-1]
		pos := min((n-1)*pitch, axisLen-len(lbl))
		if pos > lastEnd && pos >= 0 {
			copy(buf[pos:], lbl)
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a round tick interval targeting about 5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// FormatChartLabel renders an axis amount in shillings compactly.
// e.g., 2500 -> "2.5K", 3000 -> "3K"
func FormatChartLabel(v float64) string {
	trim := func(f float64, suffix string) string {
		if f == math.Trunc(f) {
			return fmt.Sprintf("%.0f%s", f, suffix)
		}
		return fmt.Sprintf("%.1f%s", f, suffix)
	}
	switch {
	case v >= 1e6:
		return trim(v/1e6, "M")
	case v >= 1e3:
		return trim(v/1e3, "K")
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// BarItem is one row of a horizontal bar list.
type BarItem struct {
	Label string
	Value float64
	Note  string // shown after the bar, e.g. the formatted amount
}

// HBarList renders labelled horizontal bars scaled to the largest value.
func HBarList(items []BarItem, color lipgloss.Color, width int) string {
	if len(items) == 0 {
		return ""
	}
	t := theme.Active

	labelW, noteW := 0, 0
	peak := 0.0
	for _, it := range items {
		labelW = max(labelW, lipgloss.Width(it.Label))
		noteW = max(noteW, lipgloss.Width(it.Note))
		peak = max(peak, it.Value)
	}
	labelW = min(labelW, max(8, width/3))
	barMax := max(1, width-labelW-noteW-3)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(items))
	for _, it := range items {
		barLen := 0
		if peak > 0 {
			barLen = max(0, int(it.Value/peak*float64(barMax)))
		}
		label := it.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:max(1, labelW-1)]) + "…"
		}
		lines = append(lines,
			nameStyle.Render(fmt.Sprintf("%-*s", labelW, label))+
				blankStyle.Render(" ")+
				barStyle.Render(strings.Repeat("█", barLen))+
				blankStyle.Render(strings.Repeat(" ", barMax-barLen+1))+
				noteStyle.Render(fmt.Sprintf("%*s", noteW, it.Note)))
	}
	return strings.Join(lines, "\n")
}
