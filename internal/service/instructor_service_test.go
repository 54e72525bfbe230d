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

type mockInstructorRepo struct {
	instructors  map[string]models.Instructor
	emailOwners  map[string]string
	deleted      []string
	deleteResult int64
}

func (m *mockInstructorRepo) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	instructors := make([]models.Instructor, 0, len(m.instructors))
	for _, i := range m.instructors {
		instructors = append(instructors, i)
	}
	return instructors, len(instructors), nil
}

func (m *mockInstructorRepo) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		return &i, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstructorRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if id, ok := m.emailOwners[email]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInstructorRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	if m.instructors == nil {
		m.instructors = make(map[string]models.Instructor)
	}
	if instructor.ID == "" {
		instructor.ID = "generated"
	}
	m.instructors[instructor.ID] = *instructor
	return nil
}

func (m *mockInstructorRepo) Update(ctx context.Context, instructor *models.Instructor) error {
	m.instructors[instructor.ID] = *instructor
	return nil
}

func (m *mockInstructorRepo) Delete(ctx context.Context, id string) (int64, error) {
	m.deleted = append(m.deleted, id)
	return m.deleteResult, nil
}

type mockWindowCascade struct {
	deletedFor []string
	enabled    bool
	toggleErr  error
}

func (m *mockWindowCascade) DeleteByInstructor(ctx context.Context, instructorID string) error {
	m.deletedFor = append(m.deletedFor, instructorID)
	return nil
}

func (m *mockWindowCascade) ToggleEnabledByInstructor(ctx context.Context, instructorID string) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	m.enabled = !m.enabled
	return m.enabled, nil
}

type mockSessionDetach struct {
	detachedFor []string
}

func (m *mockSessionDetach) DetachByInstructor(ctx context.Context, instructorID string) error {
	m.detachedFor = append(m.detachedFor, instructorID)
	return nil
}

func TestInstructorServiceCreateRejectsUnderage(t *testing.T) {
	svc := NewInstructorService(&mockInstructorRepo{}, &mockWindowCascade{}, &mockSessionDetach{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInstructorRequest{FullName: "Too Young", Age: models.MinInstructorAge - 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestInstructorServiceDeleteCascades(t *testing.T) {
	repo := &mockInstructorRepo{deleteResult: 1}
	windows := &mockWindowCascade{}
	sessions := &mockSessionDetach{}
	svc := NewInstructorService(repo, windows, sessions, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "inst-1"))
	assert.Equal(t, []string{"inst-1"}, windows.deletedFor)
	assert.Equal(t, []string{"inst-1"}, sessions.detachedFor)
	assert.Equal(t, []string{"inst-1"}, repo.deleted)
}

func TestInstructorServiceDeleteMissing(t *testing.T) {
	svc := NewInstructorService(&mockInstructorRepo{deleteResult: 0}, &mockWindowCascade{}, &mockSessionDetach{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestInstructorServiceToggleWithoutWindow(t *testing.T) {
	repo := &mockInstructorRepo{instructors: map[string]models.Instructor{"inst-1": {ID: "inst-1", FullName: "Marta", Age: 30}}}
	svc := NewInstructorService(repo, &mockWindowCascade{toggleErr: sql.ErrNoRows}, &mockSessionDetach{}, nil, validator.New(), zap.NewNop())

	_, err := svc.ToggleAvailability(context.Background(), "inst-1")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}
