package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClock(t *testing.T, raw string) TimeOfDay {
	t.Helper()
	value, err := ParseClock(raw)
	require.NoError(t, err)
	return value
}

func TestParseClock(t *testing.T) {
	value, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, value.Hour)
	assert.Equal(t, 30, value.Minute)
	assert.Equal(t, "08:30", value.String())

	for _, raw := range []string{"", "8:30", "0830", "24:00", "12:60", "ab:cd", "12:3", "12:345"} {
		_, err := ParseClock(raw)
		assert.ErrorIs(t, err, ErrFormat, "input %q", raw)
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	assert.True(t, mustClock(t, "08:59").Before(mustClock(t, "09:00")))
	assert.False(t, mustClock(t, "09:00").Before(mustClock(t, "09:00")))
	assert.True(t, mustClock(t, "09:00").Equal(mustClock(t, "09:00")))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"partial", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "08:00", "12:00", "09:00", "10:00", true},
		{"touching end to start", "09:00", "10:00", "10:00", "11:00", false},
		{"touching start to end", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "07:00", "08:00", "09:00", "10:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(mustClock(t, tc.aStart), mustClock(t, tc.aEnd), mustClock(t, tc.bStart), mustClock(t, tc.bEnd))
			assert.Equal(t, tc.want, got)
			// The predicate is symmetric in its interval arguments.
			mirrored := Overlaps(mustClock(t, tc.bStart), mustClock(t, tc.bEnd), mustClock(t, tc.aStart), mustClock(t, tc.aEnd))
			assert.Equal(t, got, mirrored)
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	start := mustClock(t, "09:00")
	end := mustClock(t, "10:00")
	assert.True(t, Overlaps(start, end, start, end))
	// An empty interval does not overlap itself.
	assert.False(t, Overlaps(start, start, start, start))
}

func TestContains(t *testing.T) {
	winStart := mustClock(t, "08:00")
	winEnd := mustClock(t, "17:00")

	assert.True(t, Contains(winStart, winEnd, mustClock(t, "09:00"), mustClock(t, "10:00")))
	assert.True(t, Contains(winStart, winEnd, winStart, winEnd))
	assert.False(t, Contains(winStart, winEnd, mustClock(t, "07:00"), mustClock(t, "09:00")))
	assert.False(t, Contains(winStart, winEnd, mustClock(t, "16:00"), mustClock(t, "18:00")))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2025, date.Year)
	assert.Equal(t, time.March, date.Month)
	assert.Equal(t, 10, date.Day)
	assert.Equal(t, time.Monday, date.Weekday())
	assert.Equal(t, "2025-03-10", date.String())

	for _, raw := range []string{"", "2025-3-10", "10-03-2025", "2025-02-30", "2025-13-01", "not-a-date"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrFormat, "input %q", raw)
	}
}

func TestDateStampOrdering(t *testing.T) {
	a, _ := ParseDate("2025-03-10")
	b, _ := ParseDate("2025-03-11")
	c, _ := ParseDate("2026-01-01")
	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestParseWeekdaysRange(t *testing.T) {
	set, err := ParseWeekdays("Mon-Fri")
	require.NoError(t, err)
	assert.True(t, set.Matches(time.Monday))
	assert.True(t, set.Matches(time.Wednesday))
	assert.True(t, set.Matches(time.Friday))
	assert.False(t, set.Matches(time.Saturday))
	assert.False(t, set.Matches(time.Sunday))
}

func TestParseWeekdaysWrappingRange(t *testing.T) {
	set, err := ParseWeekdays("Sat-Mon")
	require.NoError(t, err)
	assert.True(t, set.Matches(time.Saturday))
	assert.True(t, set.Matches(time.Sunday))
	assert.True(t, set.Matches(time.Monday))
	assert.False(t, set.Matches(time.Tuesday))
}

func TestParseWeekdaysList(t *testing.T) {
	set, err := ParseWeekdays("Mon, Wed, Fri")
	require.NoError(t, err)
	assert.True(t, set.Matches(time.Monday))
	assert.True(t, set.Matches(time.Wednesday))
	assert.True(t, set.Matches(time.Friday))
	assert.False(t, set.Matches(time.Tuesday))
	assert.False(t, set.Matches(time.Thursday))
}

func TestParseWeekdaysDaily(t *testing.T) {
	for _, label := range []string{"", "Daily", "daily", "  "} {
		set, err := ParseWeekdays(label)
		require.NoError(t, err)
		for day := time.Sunday; day <= time.Saturday; day++ {
			assert.True(t, set.Matches(day), "label %q day %v", label, day)
		}
	}
}

func TestParseWeekdaysCaseInsensitiveFullNames(t *testing.T) {
	set, err := ParseWeekdays("monday-friday")
	require.NoError(t, err)
	assert.True(t, set.Matches(time.Monday))
	assert.False(t, set.Matches(time.Sunday))
}

func TestParseWeekdaysInvalid(t *testing.T) {
	for _, label := range []string{"Funday", "Mo", "Mon-Xyz", "Mon,Funday"} {
		_, err := ParseWeekdays(label)
		assert.ErrorIs(t, err, ErrFormat, "label %q", label)
	}
}
