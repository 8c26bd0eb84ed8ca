package tui

import (
	"strings"
	"testing"
)

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") {
		t.Errorf("helpEntry('q','quit') does not contain key 'q': %q", result)
	}
	if !strings.Contains(result, "quit") {
		t.Errorf("helpEntry('q','quit') does not contain label 'quit': %q", result)
	}
}

func TestHelpEntryMultipleKeys(t *testing.T) {
	tests := []struct {
		key   string
		label string
	}{
		{"j/k", "field"},
		{"enter", "edit"},
		{"esc", "done"},
		{"ctrl+s", "ask"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			result := helpEntry(tc.key, tc.label)
			if !strings.Contains(result, tc.key) {
				t.Errorf("helpEntry(%q, %q) missing key", tc.key, tc.label)
			}
			if !strings.Contains(result, tc.label) {
				t.Errorf("helpEntry(%q, %q) missing label", tc.key, tc.label)
			}
		})
	}
}

func TestButtonRendersLabel(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		if got := button("Ask", enabled); !strings.Contains(got, "Ask") {
			t.Errorf("button(Ask, %v) = %q", enabled, got)
		}
	}
}

func TestChipStyleCycles(t *testing.T) {
	n := len(chipColors)
	if chipStyle(0).GetForeground() != chipStyle(n).GetForeground() {
		t.Error("chip colors should wrap around")
	}
	if n > 1 && chipStyle(0).GetForeground() == chipStyle(1).GetForeground() {
		t.Error("adjacent chips should differ")
	}
}

func TestShimmerLogoSpellsName(t *testing.T) {
	for _, frame := range []int{0, 17, 1000} {
		logo := renderShimmerLogo(frame)
		for _, r := range "ESTATE" {
			if !strings.ContainsRune(logo, r) {
				t.Errorf("frame %d: logo missing %q", frame, r)
			}
		}
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{127.9, 127},
		{300, 255},
	}
	for _, tc := range tests {
		if got := clampByte(tc.in); got != tc.want {
			t.Errorf("clampByte(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHelpViewListsCommandsAndLinks(t *testing.T) {
	view := helpView("http://localhost:8000", 1)
	for _, want := range []string{"estate login", "estate ask", "http://localhost:8000", "API documentation", "> "} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q:\n%s", want, view)
		}
	}
}
