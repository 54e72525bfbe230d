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

type mockStudentRepo struct {
	students     map[string]models.Student
	emailOwners  map[string]string
	deleted      []string
	deleteResult int64
	err          error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	students := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s)
	}
	return students, len(students), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if id, ok := m.emailOwners[email]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (int64, error) {
	m.deleted = append(m.deleted, id)
	return m.deleteResult, nil
}

type mockSessionCascade struct {
	deletedFor []string
}

func (m *mockSessionCascade) DeleteByStudent(ctx context.Context, studentID string) error {
	m.deletedFor = append(m.deletedFor, studentID)
	return nil
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return appErrors.FromError(err).Code
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{emailOwners: map[string]string{}}
	svc := NewStudentService(repo, &mockSessionCascade{}, nil, validator.New(), zap.NewNop())

	email := "kid@example.com"
	student, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana Lima", Age: 12, Email: &email})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "Ana Lima", student.FullName)
}

func TestStudentServiceCreateRejectsUnderage(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, &mockSessionCascade{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Too Young", Age: models.MinStudentAge - 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestStudentServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := &mockStudentRepo{emailOwners: map[string]string{"dup@example.com": "stud-1"}}
	svc := NewStudentService(repo, &mockSessionCascade{}, nil, validator.New(), zap.NewNop())

	email := "dup@example.com"
	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Dup", Age: 10, Email: &email})
	assert.Equal(t, appErrors.ErrConflict.Code, errCode(t, err))
}

func TestStudentServiceUpdateKeepsOwnEmail(t *testing.T) {
	email := "own@example.com"
	repo := &mockStudentRepo{
		students:    map[string]models.Student{"stud-1": {ID: "stud-1", FullName: "Ana", Age: 10, Email: &email}},
		emailOwners: map[string]string{"own@example.com": "stud-1"},
	}
	svc := NewStudentService(repo, &mockSessionCascade{}, nil, validator.New(), zap.NewNop())

	student, err := svc.Update(context.Background(), "stud-1", UpdateStudentRequest{FullName: "Ana Lima", Age: 11, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, 11, student.Age)
}

func TestStudentServiceDeleteCascadesSessions(t *testing.T) {
	repo := &mockStudentRepo{deleteResult: 1}
	cascade := &mockSessionCascade{}
	svc := NewStudentService(repo, cascade, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "stud-1"))
	assert.Equal(t, []string{"stud-1"}, cascade.deletedFor)
	assert.Equal(t, []string{"stud-1"}, repo.deleted)
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{deleteResult: 0}, &mockSessionCascade{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}
