package models

import (
	"testing"
	"time"
)

func TestParseDayFirstIn(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		lima = time.FixedZone("PET", -5*3600)
	}

	cases := []struct {
		in       string
		expected string // YYYY-MM-DD, empty for absent
	}{
		{"10/01/2025", "2025-01-10"},
		{"10/01/2025 00:00:00", "2025-01-10"},
		{"10/01/2025 14:30", "2025-01-10"},
		{"3/2/2025", "2025-02-03"},
		{"03-02-2025", "2025-02-03"},
		{"03.02.2025", "2025-02-03"},
		{"2025-02-03", "2025-02-03"},
		{"2025-02-03 08:00:00", "2025-02-03"},
		{"  01/12/2024  ", "2024-12-01"},
		{"", ""},
		{"   ", ""},
		{"no date", ""},
		{"32/01/2025", ""},
		{"10/13/2025", ""},
	}
	for _, tc := range cases {
		got := ParseDayFirstIn(tc.in, lima)
		if tc.expected == "" {
			if got != nil {
				t.Fatalf("ParseDayFirstIn(%q) expected absent, got %s", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("ParseDayFirstIn(%q) expected %s, got absent", tc.in, tc.expected)
		}
		if got.Format("2006-01-02") != tc.expected {
			t.Fatalf("ParseDayFirstIn(%q) expected %s, got %s", tc.in, tc.expected, got.Format("2006-01-02"))
		}
		if got.Location() != lima {
			t.Fatalf("ParseDayFirstIn(%q) expected location %s, got %s", tc.in, lima, got.Location())
		}
	}
}

func TestFormatPassDate_ZeroesTime(t *testing.T) {
	d := time.Date(2025, 1, 10, 16, 42, 7, 0, time.UTC)
	if got := FormatPassDate(d); got != "10/01/2025 00:00:00" {
		t.Fatalf("expected 10/01/2025 00:00:00, got %s", got)
	}
}

func TestFormatPassDate_RoundTripsThroughParser(t *testing.T) {
	d := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	parsed := ParseDayFirstIn(FormatPassDate(d), time.UTC)
	if parsed == nil || !parsed.Equal(d) {
		t.Fatalf("expected %s back, got %v", d, parsed)
	}
}

func TestParseEditDate(t *testing.T) {
	for _, in := range []string{"2025-01-10", "10/01/2025"} {
		d, ok := ParseEditDate(in)
		if !ok {
			t.Fatalf("ParseEditDate(%q) failed", in)
		}
		if d.Format("2006-01-02") != "2025-01-10" {
			t.Fatalf("ParseEditDate(%q) expected 2025-01-10, got %s", in, d.Format("2006-01-02"))
		}
	}
	if _, ok := ParseEditDate("tomorrow"); ok {
		t.Fatalf("expected ParseEditDate to reject free text")
	}
}
