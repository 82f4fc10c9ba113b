package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout and ClockLayout are the only accepted input formats.
	DateLayout  = "2006-01-02" // YYYY-MM-DD
	ClockLayout = "15:04"      // HH:mm, zero-padded
)

var (
	ErrInvalidFormat         = errors.New("invalid format")
	ErrUnknownTimezone       = errors.New("unknown timezone")
	ErrNotifyAfterOccurrence = errors.New("notify time must be before occurrence time")
)

// ResolveLocal converts a local date, clock time and IANA zone name into an
// absolute UTC instant. Inputs must match DateLayout/ClockLayout exactly.
func ResolveLocal(dateStr, clockStr, tz string) (time.Time, error) {
	loc, err := loadZone(tz)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidFormat, dateStr)
	}
	c, err := time.Parse(ClockLayout, clockStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidFormat, clockStr)
	}
	lt := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return lt.UTC(), nil
}

// NowInZone returns the current local date (DateLayout) in tz together with
// the current instant.
func NowInZone(tz string) (string, time.Time, error) {
	loc, err := loadZone(tz)
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	return now.In(loc).Format(DateLayout), now, nil
}

// FormatInZone renders an instant in the given zone using a time layout.
func FormatInZone(t time.Time, tz, layout string) (string, error) {
	loc, err := loadZone(tz)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(layout), nil
}

// ResolveUpcoming resolves a local clock time in tz to the next instant with
// that wall time strictly after now: today if still ahead, otherwise a later
// day with the same local clock reading.
func ResolveUpcoming(clockStr, tz string, now time.Time) (time.Time, error) {
	loc, err := loadZone(tz)
	if err != nil {
		return time.Time{}, err
	}
	c, err := time.Parse(ClockLayout, clockStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidFormat, clockStr)
	}
	local := now.In(loc)
	inst := time.Date(local.Year(), local.Month(), local.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return RollForwardIfPast(inst, now).UTC(), nil
}

// RollForwardIfPast advances t by calendar days in its own location until it
// is strictly after now. Rolling by days rather than fixed 24h spans keeps
// the wall clock reading stable across DST transitions, so t must still carry
// the zone it was resolved in.
func RollForwardIfPast(t, now time.Time) time.Time {
	for !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// ValidateTZ checks that tz names a real IANA location and returns its
// canonical name.
func ValidateTZ(tz string) (string, error) {
	loc, err := loadZone(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// ValidateClock checks that s is a well-formed HH:mm clock time.
func ValidateClock(s string) error {
	if _, err := time.Parse(ClockLayout, s); err != nil {
		return fmt.Errorf("%w: time %q", ErrInvalidFormat, s)
	}
	return nil
}

func loadZone(tz string) (*time.Location, error) {
	// LoadLocation("") silently means UTC; treat empty as invalid input.
	if tz == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownTimezone)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}
	return loc, nil
}
