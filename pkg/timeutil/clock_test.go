package timeutil

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:00", 9 * 3600, false},
		{"09:00:00", 9 * 3600, false},
		{"21:30", 21*3600 + 30*60, false},
		{"23:59:59", 23*3600 + 59*60 + 59, false},
		{"00:00", 0, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:00", 0, true},
		// Right length, wrong shape: the layout must consume the whole string.
		{"1:2:3", 0, true},
		{"1:000", 0, true},
		{"09-00", 0, true},
		{"morning", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("09:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "09:00:00" {
		t.Errorf("Normalize(09:00) = %s, want 09:00:00", got)
	}

	got, err = Normalize("18:30:15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "18:30:15" {
		t.Errorf("Normalize(18:30:15) = %s, want 18:30:15", got)
	}
}

func TestContains(t *testing.T) {
	h := func(s string) Clock {
		c, err := ParseClock(s)
		if err != nil {
			t.Fatalf("bad clock %q: %v", s, err)
		}
		return c
	}

	tests := []struct {
		name                         string
		hStart, hEnd, wStart, wEnd   string
		want                         bool
	}{
		{"fully inside", "09:00", "18:00", "10:00", "12:00", true},
		{"exact bounds", "09:00", "18:00", "09:00", "18:00", true},
		{"starts before", "09:00", "18:00", "08:00", "12:00", false},
		{"ends after", "09:00", "18:00", "17:00", "19:00", false},
		{"entirely outside", "09:00", "18:00", "19:00", "20:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Contains(h(tt.hStart), h(tt.hEnd), h(tt.wStart), h(tt.wEnd))
			if got != tt.want {
				t.Errorf("Contains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"overlapping", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"contained", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"touching half-open", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"disjoint", at(10, 0), at(11, 0), at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	c, err := ParseClock("10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Combine("2025-03-10", c, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine = %s, want %s", got, want)
	}

	if _, err := Combine("03/10/2025", c, time.UTC); err == nil {
		t.Error("expected error for malformed date")
	}
}
