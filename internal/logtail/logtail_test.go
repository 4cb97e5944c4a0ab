package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galley.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("level=INFO msg=\"line %d\"", i))
	}
	path := writeLog(t, all)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"partial (5)", 5, all[5:]},
		{"exactly all (10)", 10, all},
		{"more than exists (20)", 20, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines, slog.LevelDebug)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_FiltersByLevel(t *testing.T) {
	path := writeLog(t, []string{
		`time=2026-03-01T12:00:00Z level=DEBUG msg="request done" status=200`,
		`time=2026-03-01T12:00:01Z level=WARN msg="list recipes" error="boom"`,
		`panic: something odd`,
		`time=2026-03-01T12:00:02Z level=INFO msg="recipe saved" id=7`,
		`time=2026-03-01T12:00:03Z level=ERROR msg="save recipe" id=7`,
	})

	got, err := Read(path, 10, slog.LevelWarn)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{
		`time=2026-03-01T12:00:01Z level=WARN msg="list recipes" error="boom"`,
		`panic: something odd`,
		`time=2026-03-01T12:00:03Z level=ERROR msg="save recipe" id=7`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10, slog.LevelInfo)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestLineLevel(t *testing.T) {
	tests := []struct {
		line   string
		want   slog.Level
		wantOK bool
	}{
		{`level=INFO msg=x`, slog.LevelInfo, true},
		{`time=x level=WARN msg=y`, slog.LevelWarn, true},
		{`level=ERROR+2 msg=z`, slog.LevelError + 2, true},
		{`level=LOUD msg=z`, 0, false},
		{`no level here`, 0, false},
	}
	for _, tt := range tests {
		got, ok := LineLevel(tt.line)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LineLevel(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}
