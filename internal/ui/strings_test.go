package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  Pillars of Creation  ", 0, "Pillars of Creation"},
		{"Orion", 10, "Orion"},
		{"Horsehead Nebula", 10, "Horsehe..."},
		{"Andromeda", 3, "And"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle_KeepsBothEnds(t *testing.T) {
	url := "https://images-assets.nasa.gov/image/as11-40-5874/as11-40-5874~medium.jpg"
	got := truncateMiddle(url, 21)
	if len([]rune(got)) != 21 {
		t.Fatalf("truncateMiddle length = %d, want 21 (%q)", len([]rune(got)), got)
	}
	if got[:10] != "https://im" || got[len(got)-10:] != "medium.jpg" {
		t.Fatalf("truncateMiddle = %q, want both ends kept", got)
	}
	if short := truncateMiddle("a.jpg", 21); short != "a.jpg" {
		t.Fatalf("truncateMiddle short = %q", short)
	}
}

func TestShortDate(t *testing.T) {
	if got := shortDate("1969-07-20T00:00:00Z"); got != "1969-07-20" {
		t.Fatalf("shortDate = %q", got)
	}
	if got := shortDate("July 1969"); got != "July 1969" {
		t.Fatalf("shortDate non-date = %q", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := clampInt(5, 0, 3); got != 3 {
		t.Fatalf("clampInt high = %d", got)
	}
	if got := clampInt(-1, 0, 3); got != 0 {
		t.Fatalf("clampInt low = %d", got)
	}
	if got := clampInt(2, 0, -1); got != 0 {
		t.Fatalf("clampInt empty range = %d, want lo", got)
	}
}
