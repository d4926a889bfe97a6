package timeutil

import (
	"sync/atomic"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the laboratory's wall-clock zone.
const DefaultZone = "America/Sao_Paulo"

var lab atomic.Pointer[time.Location]

func init() {
	if err := SetLocation(DefaultZone); err != nil {
		// Brasília time has had no DST since 2019
		lab.Store(time.FixedZone("BRT", -3*60*60))
	}
}

// SetLocation switches the laboratory zone, e.g. from configuration.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	lab.Store(loc)
	return nil
}

func Location() *time.Location {
	return lab.Load()
}

// Now returns the current time in the laboratory zone.
func Now() time.Time {
	return time.Now().In(Location())
}

// DateOf returns t's calendar date in the laboratory zone as UTC midnight.
func DateOf(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the current laboratory calendar date as UTC midnight.
func Today() time.Time {
	return DateOf(time.Now())
}

// CivilDate drops the clock and zone of t, keeping its own Y-M-D.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from one date to another. Only the
// Y-M-D components of each argument are considered. Unix seconds keep
// the count exact past the range of time.Duration.
func DaysBetween(from, to time.Time) int {
	return int((CivilDate(to).Unix() - CivilDate(from).Unix()) / secondsPerDay)
}

// StartOfDay returns 00:00 of t's laboratory date in the laboratory zone.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location())
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return CivilDate(t), nil
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02/01/2006"
)
