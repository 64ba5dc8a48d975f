package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTabIdxByKey(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'o', TabOverview},
		{'m', TabMill},
		{'n', TabRentals},
		{'u', TabSummaries},
		{'x', TabSettings},
		{'z', -1},
	}
	for _, tt := range tests {
		if got := TabIdxByKey(tt.key); got != tt.want {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestTabKeysHighlightInName(t *testing.T) {
	for _, tab := range Tabs {
		if tab.KeyPos < 0 {
			continue
		}
		if got := rune(strings.ToLower(tab.Name)[tab.KeyPos]); got != tab.Key {
			t.Errorf("tab %s: letter at %d = %q, want %q", tab.Name, tab.KeyPos, got, tab.Key)
		}
	}
}

func TestRenderTabBarMatchesVisualWidths(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1 // separators

		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: content width = %d, want %d", active, got, want)
		}
	}
}

func TestRenderStatusBarWidth(t *testing.T) {
	info := StatusInfo{Backend: "sqlite", DataAge: "3s ago", AutoRefresh: true, Message: "saved"}
	bar := RenderStatusBar(100, info)
	if w := lipgloss.Width(bar); w != 100 {
		t.Fatalf("status bar width = %d, want 100", w)
	}
	plain := stripANSI(bar)
	for _, want := range []string{"sqlite", "updated 3s ago", "auto", "saved"} {
		if !strings.Contains(plain, want) {
			t.Errorf("status bar missing %q: %q", want, plain)
		}
	}
	if plain := stripANSI(RenderStatusBar(100, StatusInfo{Refreshing: true, DataAge: "1s ago"})); strings.Contains(plain, "updated") {
		t.Errorf("refreshing bar still shows data age: %q", plain)
	}
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
