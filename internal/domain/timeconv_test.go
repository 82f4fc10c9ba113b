package domain

import (
	"errors"
	"testing"
	"time"
)

// helper: build a time in given tz and return its UTC
func mustLocalUTC(t *testing.T, tz string, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	lt := time.Date(y, m, d, hh, mm, 0, 0, loc)
	return lt.UTC()
}

func TestResolveLocal_MatchesZoneArithmetic(t *testing.T) {
	got, err := ResolveLocal("2025-06-01", "18:00", "Europe/Kiev")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 18, 0)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestResolveLocal_FormatRoundTrip(t *testing.T) {
	cases := []struct {
		date, clock, tz string
	}{
		{"2025-06-01", "18:00", "Europe/Kiev"},
		{"2025-01-15", "09:30", "America/New_York"},
		{"2025-12-31", "23:59", "Asia/Tokyo"},
		{"2025-03-30", "12:00", "Europe/London"}, // DST switch day
		{"2025-07-04", "00:00", "UTC"},
	}
	for _, c := range cases {
		inst, err := ResolveLocal(c.date, c.clock, c.tz)
		if err != nil {
			t.Fatalf("resolve %v: %v", c, err)
		}
		gotDate, err := FormatInZone(inst, c.tz, DateLayout)
		if err != nil {
			t.Fatalf("format date: %v", err)
		}
		gotClock, err := FormatInZone(inst, c.tz, ClockLayout)
		if err != nil {
			t.Fatalf("format clock: %v", err)
		}
		if gotDate != c.date || gotClock != c.clock {
			t.Fatalf("round trip %v: got %s %s", c, gotDate, gotClock)
		}
	}
}

func TestResolveLocal_RejectsBadInput(t *testing.T) {
	cases := []struct {
		date, clock, tz string
		want            error
	}{
		{"2025-6-1", "18:00", "Europe/Kiev", ErrInvalidFormat},
		{"tomorrow", "18:00", "Europe/Kiev", ErrInvalidFormat},
		{"2025-06-01", "7:30", "Europe/Kiev", ErrInvalidFormat},
		{"2025-06-01", "25:00", "Europe/Kiev", ErrInvalidFormat},
		{"2025-06-01", "18:00", "Mars/Colony", ErrUnknownTimezone},
		{"2025-06-01", "18:00", "", ErrUnknownTimezone},
	}
	for _, c := range cases {
		_, err := ResolveLocal(c.date, c.clock, c.tz)
		if !errors.Is(err, c.want) {
			t.Fatalf("resolve(%q,%q,%q): want %v, got %v", c.date, c.clock, c.tz, c.want, err)
		}
	}
}

func TestRollForwardIfPast(t *testing.T) {
	now := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 19, 0)

	past := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 18, 0)
	rolled := RollForwardIfPast(past, now)
	if !rolled.Equal(past.Add(24 * time.Hour)) {
		t.Fatalf("want next day, got %v", rolled)
	}

	future := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 20, 0)
	if got := RollForwardIfPast(future, now); !got.Equal(future) {
		t.Fatalf("future instant must be unchanged, got %v", got)
	}

	// Equal to now counts as past: roll forward.
	if got := RollForwardIfPast(now, now); !got.After(now) {
		t.Fatalf("instant equal to now must roll forward, got %v", got)
	}
}

func TestResolveUpcoming(t *testing.T) {
	now := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 10, 0)

	// Still ahead today.
	got, err := ResolveUpcoming("18:00", "Europe/Kiev", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 1, 18, 0); !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	// Already passed today: lands tomorrow.
	got, err = ResolveUpcoming("09:00", "Europe/Kiev", now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := mustLocalUTC(t, "Europe/Kiev", 2025, time.June, 2, 9, 0); !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	if _, err := ResolveUpcoming("18:00", "Mars/Colony", now); !errors.Is(err, ErrUnknownTimezone) {
		t.Fatalf("want ErrUnknownTimezone, got %v", err)
	}
	if _, err := ResolveUpcoming("25:00", "Europe/Kiev", now); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
}

func TestResolveUpcoming_KeepsWallClockAcrossDST(t *testing.T) {
	cases := []struct {
		name     string
		tz       string
		nowY     int
		nowM     time.Month
		nowD     int
		wantDate string
	}{
		// Kyiv springs forward 2025-03-30 03:00 -> 04:00.
		{"spring forward", "Europe/Kiev", 2025, time.March, 29, "2025-03-30"},
		// Kyiv falls back 2025-10-26 04:00 -> 03:00.
		{"fall back", "Europe/Kiev", 2025, time.October, 25, "2025-10-26"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// 19:00 local: 18:00 already passed, so the task rolls over the
			// transition night onto the next day.
			now := mustLocalUTC(t, c.tz, c.nowY, c.nowM, c.nowD, 19, 0)
			got, err := ResolveUpcoming("18:00", c.tz, now)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			gotClock, err := FormatInZone(got, c.tz, ClockLayout)
			if err != nil {
				t.Fatalf("format clock: %v", err)
			}
			if gotClock != "18:00" {
				t.Fatalf("wall clock shifted across DST: want 18:00, got %s", gotClock)
			}
			gotDate, err := FormatInZone(got, c.tz, DateLayout)
			if err != nil {
				t.Fatalf("format date: %v", err)
			}
			if gotDate != c.wantDate {
				t.Fatalf("want date %s, got %s", c.wantDate, gotDate)
			}
		})
	}
}

func TestRollForwardIfPast_DSTTransitionDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Kiev")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	// 18:00 on the day before the spring-forward night, rolled past 19:00.
	start := time.Date(2025, time.March, 29, 18, 0, 0, 0, loc)
	now := time.Date(2025, time.March, 29, 19, 0, 0, 0, loc)
	rolled := RollForwardIfPast(start, now)
	want := time.Date(2025, time.March, 30, 18, 0, 0, 0, loc)
	if !rolled.Equal(want) {
		t.Fatalf("want %v, got %v", want, rolled)
	}
}

func TestValidateTZ(t *testing.T) {
	if _, err := ValidateTZ("Europe/Kiev"); err != nil {
		t.Fatalf("valid zone rejected: %v", err)
	}
	if _, err := ValidateTZ("Mars/Colony"); !errors.Is(err, ErrUnknownTimezone) {
		t.Fatalf("want ErrUnknownTimezone, got %v", err)
	}
	if _, err := ValidateTZ(""); !errors.Is(err, ErrUnknownTimezone) {
		t.Fatalf("empty zone must be rejected, got %v", err)
	}
}

func TestValidateClock(t *testing.T) {
	for _, ok := range []string{"00:00", "09:05", "23:59"} {
		if err := ValidateClock(ok); err != nil {
			t.Fatalf("%q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"24:00", "9:05", "18.30", "half past six", ""} {
		if err := ValidateClock(bad); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("%q: want ErrInvalidFormat, got %v", bad, err)
		}
	}
}
