// Package scheduling decides whether a proposed training session fits an
// instructor's fixed weekly window without colliding with sessions the
// instructor already owns. It is pure: callers pass the availability window
// and the existing-sessions snapshot explicitly, so the same predicate backs
// both booking validation and the available-instructors query and the two
// can never disagree.
package scheduling

import (
	"fmt"
	"sort"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/timeslot"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

// CheckBookable reports whether the interval [start, end) on date can be
// booked against the given window and the instructor's existing sessions on
// that date. It returns nil when bookable, otherwise one of the typed
// reasons: ErrInvalidRange, ErrInstructorUnavailable, ErrOutsideAvailability
// or ErrTimeConflict (wrapping a SessionConflictError naming the colliding
// session). Conflicts are deterministic for a given snapshot, so callers
// must not retry without new information.
func CheckBookable(window *models.Availability, date timeslot.DateStamp, start, end timeslot.TimeOfDay, existing []models.Session) error {
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	if window == nil || !window.Enabled {
		return appErrors.Clone(appErrors.ErrInstructorUnavailable, "")
	}

	days, err := timeslot.ParseWeekdays(window.Weekdays)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored weekday label is malformed")
	}
	if !days.Matches(date.Weekday()) {
		return appErrors.Clone(appErrors.ErrOutsideAvailability, "instructor does not work on this weekday")
	}

	winStart, winEnd, err := windowTimes(window)
	if err != nil {
		return err
	}
	if !timeslot.Contains(winStart, winEnd, start, end) {
		return appErrors.Clone(appErrors.ErrOutsideAvailability, "")
	}

	for _, session := range existing {
		sessStart, sessEnd, ok, err := sessionTimes(session)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if timeslot.Overlaps(sessStart, sessEnd, start, end) {
			conflict := &models.SessionConflictError{
				SessionID: session.ID,
				Message:   fmt.Sprintf("overlaps session %s (%s-%s)", session.ID, sessStart, sessEnd),
			}
			return appErrors.Wrap(conflict, appErrors.ErrTimeConflict.Code, appErrors.ErrTimeConflict.Status, appErrors.ErrTimeConflict.Message)
		}
	}

	return nil
}

// AvailableInstructors filters instructors down to those for which
// CheckBookable succeeds for the requested slot, using each instructor's own
// window and sessions-on-date subset. The result is ordered by instructor id
// ascending so repeated queries are deterministic.
func AvailableInstructors(date timeslot.DateStamp, start, end timeslot.TimeOfDay, instructors []models.Instructor, windows map[string]*models.Availability, sessionsOnDate map[string][]models.Session) []models.Instructor {
	sorted := make([]models.Instructor, len(instructors))
	copy(sorted, instructors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	available := make([]models.Instructor, 0, len(sorted))
	for _, instructor := range sorted {
		if err := CheckBookable(windows[instructor.ID], date, start, end, sessionsOnDate[instructor.ID]); err != nil {
			continue
		}
		available = append(available, instructor)
	}
	return available
}

func windowTimes(window *models.Availability) (timeslot.TimeOfDay, timeslot.TimeOfDay, error) {
	start, err := timeslot.ParseClock(window.StartTime)
	if err != nil {
		return timeslot.TimeOfDay{}, timeslot.TimeOfDay{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored window time is malformed")
	}
	end, err := timeslot.ParseClock(window.EndTime)
	if err != nil {
		return timeslot.TimeOfDay{}, timeslot.TimeOfDay{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored window time is malformed")
	}
	return start, end, nil
}

func sessionTimes(session models.Session) (timeslot.TimeOfDay, timeslot.TimeOfDay, bool, error) {
	if session.StartTime == nil || session.EndTime == nil {
		return timeslot.TimeOfDay{}, timeslot.TimeOfDay{}, false, nil
	}
	start, err := timeslot.ParseClock(*session.StartTime)
	if err != nil {
		return timeslot.TimeOfDay{}, timeslot.TimeOfDay{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored session time is malformed")
	}
	end, err := timeslot.ParseClock(*session.EndTime)
	if err != nil {
		return timeslot.TimeOfDay{}, timeslot.TimeOfDay{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored session time is malformed")
	}
	return start, end, true, nil
}
