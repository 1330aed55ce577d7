package dates

import (
	"testing"
	"time"
)

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-01-01", "2024-12-31", "2000-06-15"}
	for _, d := range valid {
		if !IsValidDate(d) {
			t.Fatalf("expected %q to be valid", d)
		}
	}

	invalid := []string{"2025/01/01", "01-01-2025", "2025-13-01", "2025-01-32", "not-a-date", "", "2025-02-30"}
	for _, d := range invalid {
		if IsValidDate(d) {
			t.Fatalf("expected %q to be invalid", d)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	utc := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)
	local := time.Date(2025, 1, 1, 10, 30, 0, 0, time.Local)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-01T10:30:00Z", utc},
		{"2025-01-01T10:30:00z", utc},
		{"2025-01-01T10:30:00.000000Z", utc},
		{"2025-01-01T15:30:00+05:00", utc},
		{"2025-01-01T10:30:00", local},
		{"2025-01-01T10:30:00.123456", local.Add(123456 * time.Microsecond)},
		{"2025-01-01T10:30", local},
		{"'2025-01-01T10:30:00Z'", utc},
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "yesterday", "10:30", "2025-13-01T00:00:00"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("expected ParseTimestamp(%q) to fail", bad)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 15, 30, 123456000, time.FixedZone("X", -7*3600))
	s := Format(now)
	if s != "2026-10-19T08:15:30.123456-07:00" {
		t.Fatalf("Format = %q", s)
	}
	got, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	if !got.Equal(now) {
		t.Fatalf("round trip = %v, want %v", got, now)
	}
}
