package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/morrow/internal/constants"
)

// TimeOfDay is a wall-clock time with no date, stored as minutes since midnight.
// All arithmetic wraps at 24h.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute, wrapping out-of-range values.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(0).Add(hour*60 + minute)
}

// ParseTimeOfDay parses a strict "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for compile-time constants; it panics on bad input.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// Add returns t shifted by the given number of minutes, modulo 24h.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	m := (int(t) + minutes) % constants.MinutesPerDay
	if m < 0 {
		m += constants.MinutesPerDay
	}
	return TimeOfDay(m)
}

// MinutesUntil returns the forward distance from t to u, wrapping past midnight.
func (t TimeOfDay) MinutesUntil(u TimeOfDay) int {
	d := (int(u) - int(t)) % constants.MinutesPerDay
	if d < 0 {
		d += constants.MinutesPerDay
	}
	return d
}

// String formats as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Timeline is the wake-relative coordinate system for one planned day.
// Offsets count minutes elapsed since Wake, so a day whose Sleep falls after
// midnight still orders and measures linearly.
type Timeline struct {
	Wake  TimeOfDay
	Sleep TimeOfDay
}

// Overnight reports whether sleep falls on the next calendar day.
func (tl Timeline) Overnight() bool {
	return tl.Sleep < tl.Wake
}

// Span is the length of the waking window in minutes. A zero-length window
// (sleep == wake) is treated as a full day.
func (tl Timeline) Span() int {
	span := tl.Wake.MinutesUntil(tl.Sleep)
	if span == 0 {
		return constants.MinutesPerDay
	}
	return span
}

// Offset returns t's position on the timeline, in [0, 1440).
func (tl Timeline) Offset(t TimeOfDay) int {
	return tl.Wake.MinutesUntil(t)
}

// At converts an offset back to wall-clock time.
func (tl Timeline) At(offset int) TimeOfDay {
	return tl.Wake.Add(offset)
}

// Contains reports whether t falls inside [Wake, Sleep).
func (tl Timeline) Contains(t TimeOfDay) bool {
	return tl.Offset(t) < tl.Span()
}

// Before orders two times by their position on the timeline.
func (tl Timeline) Before(a, b TimeOfDay) bool {
	return tl.Offset(a) < tl.Offset(b)
}
