package timeslot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrFormat reports a malformed clock, date or weekday value. Callers wrap it
// into the HTTP-aware error taxonomy at the service boundary.
var ErrFormat = errors.New("malformed value")

// TimeOfDay is a zone-less 24h clock value. The zero value is midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClock parses a strict zero-padded "HH:MM" 24-hour string.
func ParseClock(raw string) (TimeOfDay, error) {
	if len(raw) != 5 || raw[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("parse clock %q: %w", raw, ErrFormat)
	}
	hour, ok1 := twoDigits(raw[0], raw[1])
	minute, ok2 := twoDigits(raw[3], raw[4])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("parse clock %q: %w", raw, ErrFormat)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Minutes returns the offset from midnight, giving TimeOfDay its total order.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// Equal reports whether both values denote the same instant of day.
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t.Minutes() == other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Intervals that merely touch at an
// endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Contains reports whether the window [winStart, winEnd] fully covers the
// candidate interval [start, end].
func Contains(winStart, winEnd, start, end TimeOfDay) bool {
	return !start.Before(winStart) && !winEnd.Before(end)
}

// DateStamp is a zone-less calendar date.
type DateStamp struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a strict "YYYY-MM-DD" string into a valid calendar date.
func ParseDate(raw string) (DateStamp, error) {
	if len(raw) != 10 {
		return DateStamp{}, fmt.Errorf("parse date %q: %w", raw, ErrFormat)
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return DateStamp{}, fmt.Errorf("parse date %q: %w", raw, ErrFormat)
	}
	return DateStamp{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

// Weekday returns the day of week implied by the date.
func (d DateStamp) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d DateStamp) Before(other DateStamp) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d DateStamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// WeekdaySet is a bitmask of days of week, bit n for time.Weekday(n).
type WeekdaySet uint8

const allDays WeekdaySet = 0x7f

var dayTokens = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays parses a schedule label into the set of days it covers.
// Accepted forms: "Mon-Fri" (inclusive range, may wrap past Sunday),
// "Mon,Wed,Fri" (list), "Daily" or an empty label (every day). Day tokens
// are matched on their first three letters, case-insensitively.
func ParseWeekdays(label string) (WeekdaySet, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" || strings.EqualFold(trimmed, "daily") {
		return allDays, nil
	}

	if strings.Contains(trimmed, "-") {
		parts := strings.SplitN(trimmed, "-", 2)
		from, okFrom := parseDay(parts[0])
		to, okTo := parseDay(parts[1])
		if !okFrom || !okTo {
			return 0, fmt.Errorf("parse weekdays %q: %w", label, ErrFormat)
		}
		var set WeekdaySet
		for d := from; ; d = (d + 1) % 7 {
			set |= 1 << uint(d)
			if d == to {
				break
			}
		}
		return set, nil
	}

	var set WeekdaySet
	for _, part := range strings.Split(trimmed, ",") {
		day, ok := parseDay(part)
		if !ok {
			return 0, fmt.Errorf("parse weekdays %q: %w", label, ErrFormat)
		}
		set |= 1 << uint(day)
	}
	return set, nil
}

// Matches reports whether the set includes the given day.
func (s WeekdaySet) Matches(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

func parseDay(raw string) (time.Weekday, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if len(token) < 3 {
		return 0, false
	}
	day, ok := dayTokens[token[:3]]
	return day, ok
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
