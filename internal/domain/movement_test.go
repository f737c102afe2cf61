package domain

import (
	"testing"
	"time"
)

func TestNormalizeMovementTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-10T14:30:00.000Z", "2024-03-10 14:30:00"},
		{"2024-03-10T14:30:00-03:00", "2024-03-10 14:30:00"},
		{"2024-03-10T14:30:00", "2024-03-10 14:30:00"},
		{"2024-03-10T14:30:00.123456", "2024-03-10 14:30:00"},
		{"2024-03-10 14:30:00", "2024-03-10 14:30:00"},
		{"2024-03-10", "2024-03-10 00:00:00"},
		{"10/03/2024 14:30:00 extra text", "10/03/2024 14:30:00"},
		{"garbage", "garbage"},
		{"", "2024-05-01 08:00:00"},
	}

	for _, tc := range cases {
		if got := NormalizeMovementTime(tc.in, now); got != tc.want {
			t.Fatalf("NormalizeMovementTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWeeklyCutoff(t *testing.T) {
	t.Parallel()

	brt := time.FixedZone("BRT", -3*3600)
	// 08:00 in Brasília is 11:00 UTC on the same day.
	run := time.Date(2024, 5, 10, 11, 0, 0, 0, time.UTC)
	cutoff := WeeklyCutoff(run, brt)
	if want := time.Date(2024, 5, 4, 0, 0, 0, 0, brt); !cutoff.Equal(want) {
		t.Fatalf("WeeklyCutoff = %v, want %v", cutoff, want)
	}

	// Checked a few seconds after the run a week ago: due again now.
	lastWeek := time.Date(2024, 5, 3, 8, 0, 5, 0, brt)
	if !lastWeek.Before(cutoff) {
		t.Fatalf("check seven days back must be due: %v vs %v", lastWeek, cutoff)
	}
	sixDays := time.Date(2024, 5, 4, 0, 30, 0, 0, brt)
	if sixDays.Before(cutoff) {
		t.Fatalf("check six days back must not be due: %v vs %v", sixDays, cutoff)
	}

	if got := WeeklyCutoff(run, nil); !got.Equal(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("nil location must default to UTC, got %v", got)
	}
}
