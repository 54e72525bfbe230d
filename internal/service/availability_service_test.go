package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type mockAvailabilityRepo struct {
	windows      map[string]models.Availability
	byInstructor map[string]string
	deleteResult int64
}

func (m *mockAvailabilityRepo) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityDetail, int, error) {
	details := make([]models.AvailabilityDetail, 0, len(m.windows))
	for _, w := range m.windows {
		details = append(details, models.AvailabilityDetail{Availability: w})
	}
	return details, len(details), nil
}

func (m *mockAvailabilityRepo) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	if w, ok := m.windows[id]; ok {
		return &w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAvailabilityRepo) FindByInstructor(ctx context.Context, instructorID string) (*models.Availability, error) {
	if id, ok := m.byInstructor[instructorID]; ok {
		w := m.windows[id]
		return &w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAvailabilityRepo) ExistsForInstructor(ctx context.Context, instructorID string) (bool, error) {
	_, ok := m.byInstructor[instructorID]
	return ok, nil
}

func (m *mockAvailabilityRepo) Create(ctx context.Context, window *models.Availability) error {
	if m.windows == nil {
		m.windows = make(map[string]models.Availability)
	}
	if m.byInstructor == nil {
		m.byInstructor = make(map[string]string)
	}
	if window.ID == "" {
		window.ID = "generated"
	}
	m.windows[window.ID] = *window
	m.byInstructor[window.InstructorID] = window.ID
	return nil
}

func (m *mockAvailabilityRepo) Update(ctx context.Context, window *models.Availability) error {
	m.windows[window.ID] = *window
	return nil
}

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id string) (int64, error) {
	delete(m.windows, id)
	return m.deleteResult, nil
}

type mockInstructorLookup struct {
	instructors map[string]models.Instructor
}

func (m *mockInstructorLookup) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		return &i, nil
	}
	return nil, sql.ErrNoRows
}

func newAvailabilityService(repo *mockAvailabilityRepo, instructors *mockInstructorLookup) *AvailabilityService {
	return NewAvailabilityService(repo, instructors, nil, validator.New(), zap.NewNop())
}

func TestAvailabilityServiceAssign(t *testing.T) {
	repo := &mockAvailabilityRepo{}
	instructors := &mockInstructorLookup{instructors: map[string]models.Instructor{"inst-1": {ID: "inst-1"}}}
	svc := newAvailabilityService(repo, instructors)

	window, err := svc.Assign(context.Background(), AssignAvailabilityRequest{
		InstructorID: "inst-1",
		Weekdays:     "Mon-Fri",
		StartTime:    "08:00",
		EndTime:      "17:00",
	})
	require.NoError(t, err)
	assert.True(t, window.Enabled)
	assert.NotEmpty(t, window.ID)
}

func TestAvailabilityServiceAssignSecondWindowConflicts(t *testing.T) {
	repo := &mockAvailabilityRepo{
		windows:      map[string]models.Availability{"win-1": {ID: "win-1", InstructorID: "inst-1"}},
		byInstructor: map[string]string{"inst-1": "win-1"},
	}
	instructors := &mockInstructorLookup{instructors: map[string]models.Instructor{"inst-1": {ID: "inst-1"}}}
	svc := newAvailabilityService(repo, instructors)

	_, err := svc.Assign(context.Background(), AssignAvailabilityRequest{
		InstructorID: "inst-1",
		Weekdays:     "Mon-Fri",
		StartTime:    "08:00",
		EndTime:      "17:00",
	})
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))
}

func TestAvailabilityServiceAssignValidatesWindow(t *testing.T) {
	instructors := &mockInstructorLookup{instructors: map[string]models.Instructor{"inst-1": {ID: "inst-1"}}}

	cases := []struct {
		name     string
		weekdays string
		start    string
		end      string
		wantCode string
	}{
		{"malformed start", "Mon-Fri", "8:00", "17:00", appErrors.ErrInvalidTimeFormat.Code},
		{"malformed end", "Mon-Fri", "08:00", "24:30", appErrors.ErrInvalidTimeFormat.Code},
		{"start after end", "Mon-Fri", "17:00", "08:00", appErrors.ErrInvalidRange.Code},
		{"start equals end", "Mon-Fri", "08:00", "08:00", appErrors.ErrInvalidRange.Code},
		{"bad weekday label", "Funday", "08:00", "17:00", appErrors.ErrValidation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newAvailabilityService(&mockAvailabilityRepo{}, instructors)
			_, err := svc.Assign(context.Background(), AssignAvailabilityRequest{
				InstructorID: "inst-1",
				Weekdays:     tc.weekdays,
				StartTime:    tc.start,
				EndTime:      tc.end,
			})
			assert.Equal(t, tc.wantCode, errCode(t, err))
		})
	}
}

func TestAvailabilityServiceAssignUnknownInstructor(t *testing.T) {
	svc := newAvailabilityService(&mockAvailabilityRepo{}, &mockInstructorLookup{})

	_, err := svc.Assign(context.Background(), AssignAvailabilityRequest{
		InstructorID: "ghost",
		Weekdays:     "Mon-Fri",
		StartTime:    "08:00",
		EndTime:      "17:00",
	})
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestAvailabilityServiceUpdate(t *testing.T) {
	repo := &mockAvailabilityRepo{
		windows:      map[string]models.Availability{"win-1": {ID: "win-1", InstructorID: "inst-1", Weekdays: "Mon-Fri", StartTime: "08:00", EndTime: "17:00", Enabled: true}},
		byInstructor: map[string]string{"inst-1": "win-1"},
	}
	svc := newAvailabilityService(repo, &mockInstructorLookup{})

	disabled := false
	window, err := svc.Update(context.Background(), "win-1", UpdateAvailabilityRequest{
		Weekdays:  "Sat,Sun",
		StartTime: "09:00",
		EndTime:   "12:00",
		Enabled:   &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sat,Sun", window.Weekdays)
	assert.False(t, window.Enabled)
}

func TestAvailabilityServiceDeleteMissing(t *testing.T) {
	svc := newAvailabilityService(&mockAvailabilityRepo{deleteResult: 0}, &mockInstructorLookup{})

	err := svc.Delete(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}
