package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skyward.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead_Tail(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("Line %d", i))
	}
	path := writeLog(t, lines)

	tests := []struct {
		name     string
		maxLines int
		first    string
		count    int
	}{
		{"read all (0)", 0, "Line 1", 10},
		{"read all (negative)", -1, "Line 1", 10},
		{"read partial (5)", 5, "Line 6", 5},
		{"read exact (10)", 10, "Line 1", 10},
		{"read more than available", 50, "Line 1", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Read(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if len(entries) != tt.count {
				t.Fatalf("got %d entries, want %d", len(entries), tt.count)
			}
			if entries[0].Raw != tt.first {
				t.Fatalf("first entry = %q, want %q", entries[0].Raw, tt.first)
			}
			if entries[len(entries)-1].Raw != "Line 10" {
				t.Fatalf("last entry = %q, want Line 10", entries[len(entries)-1].Raw)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries, want none", len(entries))
	}
}

func TestParse_SlogJSON(t *testing.T) {
	line := `{"time":"2024-05-01T10:00:00.5Z","level":"WARN","msg":"fetch failed","collection":"gallery","status":429,"ratio":0.5,"tags":["a"]}`
	e := Parse(line)

	if e.Level != "WARN" || e.Message != "fetch failed" {
		t.Fatalf("entry = %#v", e)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if got := e.Summary(); got != `collection=gallery ratio=0.5 status=429 tags=["a"]` {
		t.Fatalf("Summary = %q", got)
	}
	if e.Raw != line {
		t.Fatalf("Raw not preserved")
	}
}

func TestParse_PlainText(t *testing.T) {
	e := Parse("panic: something odd")
	if e.Message != "" || e.Level != "" || len(e.Attrs) != 0 || e.Raw != "panic: something odd" {
		t.Fatalf("entry = %#v, want raw only", e)
	}
	if e.Summary() != "" {
		t.Fatalf("Summary = %q, want empty", e.Summary())
	}
}
