// Package timeslot provides pure date and time-of-day arithmetic for the
// reservation system: generating the bookable slot catalog from a
// restaurant's operating hours, formatting slot labels for display and
// classifying calendar dates as past or upcoming. It has no dependencies
// and keeps no state, so every function is deterministic for a given
// input (IsPast is deterministic relative to the supplied clock).
package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// WidthMinutes is the fixed width of a bookable slot. Slot identity for
// capacity accounting is the slot's starting hour, which is unambiguous
// because slots are an hour wide and start at most once per hour.
const WidthMinutes = 60

// DateLayout is the wire format for calendar dates ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// ErrInvalidClock is returned when a time-of-day string is not of the
// form "HH:MM" (or "HH:MM:SS", as MySQL TIME columns scan) with values
// in range.
var ErrInvalidClock = errors.New("invalid time of day")

// ErrInvalidDate is returned when a calendar date string does not parse
// as "YYYY-MM-DD".
var ErrInvalidDate = errors.New("invalid calendar date")

// Slot is one bookable interval of WidthMinutes. It is derived from a
// restaurant's hours and never stored; StartMinutes is measured from
// midnight.
type Slot struct {
	StartMinutes int
}

// Hour returns the slot's starting hour, the integer used as the slot's
// identity in reservation rows and capacity sums.
func (s Slot) Hour() int { return s.StartMinutes / 60 }

// Label formats the slot's start in 12-hour wall-clock form, e.g.
// "9:00 AM" or "12:30 PM".
func (s Slot) Label() string {
	hour := s.StartMinutes / 60
	min := s.StartMinutes % 60
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, min, ampm)
}

// ParseClock converts a "HH:MM" or "HH:MM:SS" time-of-day string into
// minutes since midnight. The format is strict, zero-padded two-digit
// fields with nothing before or after; seconds are accepted and
// discarded because MySQL TIME columns come back as "HH:MM:SS". The
// parsed value also goes back into a TIME column on the owner write
// path, so lenient inputs must not slip through here.
func ParseClock(s string) (int, error) {
	switch len(s) {
	case 5: // HH:MM
	case 8: // HH:MM:SS
		if s[5] != ':' || !twoDigits(s[6], s[7]) {
			return 0, ErrInvalidClock
		}
		if ss := int(s[6]-'0')*10 + int(s[7]-'0'); ss > 59 {
			return 0, ErrInvalidClock
		}
	default:
		return 0, ErrInvalidClock
	}
	if s[2] != ':' || !twoDigits(s[0], s[1]) || !twoDigits(s[3], s[4]) {
		return 0, ErrInvalidClock
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, ErrInvalidClock
	}
	return hh*60 + mm, nil
}

func twoDigits(a, b byte) bool {
	return a >= '0' && a <= '9' && b >= '0' && b <= '9'
}

// Generate enumerates the bookable slots between opening and closing
// time. Slots are consecutive, non-overlapping and WidthMinutes wide,
// starting at the opening time; a slot is included only if its full
// width fits before closing. Degenerate hours (opening == closing, or
// closing before opening) yield an empty catalog, not an error.
func Generate(openingTime, closingTime string) ([]Slot, error) {
	open, err := ParseClock(openingTime)
	if err != nil {
		return nil, err
	}
	closing, err := ParseClock(closingTime)
	if err != nil {
		return nil, err
	}
	// Closing at or before opening means no full slot can ever fit;
	// it also guards the capacity hint below against going negative.
	if closing <= open {
		return []Slot{}, nil
	}
	slots := make([]Slot, 0, (closing-open)/WidthMinutes+1)
	for start := open; start+WidthMinutes <= closing; start += WidthMinutes {
		slots = append(slots, Slot{StartMinutes: start})
	}
	return slots, nil
}

// ByHour returns the slot with the given starting hour from the catalog,
// reporting whether it exists. Used to validate that a booking request's
// slot index falls within the restaurant's operating hours.
func ByHour(slots []Slot, hour int) (Slot, bool) {
	for _, s := range slots {
		if s.Hour() == hour {
			return s, true
		}
	}
	return Slot{}, false
}

// ParseDate parses a "YYYY-MM-DD" calendar date. The returned time is
// midnight UTC of that date; only the calendar components are meaningful.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// IsPast reports whether the given calendar date is strictly before
// today in the server's reference location. Time-of-day components are
// ignored: a booking for today is never "past" regardless of the hour.
func IsPast(date time.Time, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := date.Date()
	day := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
