package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"Tomato soup", 0, "Tomato soup"},
		{"Tomato soup", 20, "Tomato soup"},
		{"Tomato soup", 8, "Tomat..."},
		{"Tomato soup", 3, "Tom"},
		{"  Crème brûlée  ", 6, "Crè..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestClampLines(t *testing.T) {
	if got := clampLines("a\nb\nc", 2); got != "a\nb" {
		t.Fatalf("clampLines = %q, want %q", got, "a\nb")
	}
	if got := clampLines("a", 5); got != "a" {
		t.Fatalf("clampLines = %q, want %q", got, "a")
	}
	if got := clampLines("a", 0); got != "" {
		t.Fatalf("clampLines(0) = %q, want empty", got)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name                  string
		cursor, total, height int
		start, end            int
	}{
		{"fits", 3, 5, 10, 0, 5},
		{"top", 0, 20, 5, 0, 5},
		{"middle", 10, 20, 5, 8, 13},
		{"bottom", 19, 20, 5, 15, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := window(tc.cursor, tc.total, tc.height)
			if start != tc.start || end != tc.end {
				t.Fatalf("window(%d, %d, %d) = %d, %d; want %d, %d", tc.cursor, tc.total, tc.height, start, end, tc.start, tc.end)
			}
		})
	}
}

func TestExpiryLabel(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := expiryLabel(now.Add(-time.Minute), now); got != "session expired" {
		t.Fatalf("expiryLabel(past) = %q", got)
	}
	if got := expiryLabel(now.Add(2*time.Hour), now); got != "until 14:00" {
		t.Fatalf("expiryLabel(today) = %q, want %q", got, "until 14:00")
	}
	if got := expiryLabel(now.Add(48*time.Hour), now); got != "until Mar 3 12:00" {
		t.Fatalf("expiryLabel(later) = %q, want %q", got, "until Mar 3 12:00")
	}
}

func TestThemeCycle(t *testing.T) {
	names := ThemeNames()
	if len(names) < 2 {
		t.Fatalf("ThemeNames = %v, want several", names)
	}
	seen := map[string]bool{}
	name := names[0]
	for range names {
		seen[name] = true
		name = NextTheme(name)
	}
	if name != names[0] || len(seen) != len(names) {
		t.Fatalf("NextTheme does not cycle through %v", names)
	}
	if got := GetTheme("nope").Name; got != names[0] {
		t.Fatalf("GetTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestTagStyleFallsBackForUnknownTags(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()
	if got := styles.TagStyle("VEGAN").GetBackground(); got == nil {
		t.Fatalf("TagStyle background nil")
	}
	unknown := styles.TagStyle("SPICY").GetBackground()
	muted := styles.TagStyle("ALSO_UNKNOWN").GetBackground()
	if unknown != muted {
		t.Fatalf("unknown tags styled differently: %v vs %v", unknown, muted)
	}
}
