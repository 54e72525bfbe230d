package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtrack/gymtrack-api/internal/models"
)

func TestAvailabilityRepositoryListAllKeysByInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "instructor_id", "weekdays", "start_time", "end_time", "enabled", "created_at", "updated_at"}).
		AddRow("win-1", "inst-1", "Mon-Fri", "08:00", "17:00", true, time.Now(), time.Now()).
		AddRow("win-2", "inst-2", "Sat,Sun", "09:00", "12:00", false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, instructor_id, weekdays, start_time, end_time, enabled").
		WillReturnRows(rows)

	windows, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "win-1", windows["inst-1"].ID)
	assert.False(t, windows["inst-2"].Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO availabilities").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	window := &models.Availability{InstructorID: "inst-1", Weekdays: "Mon-Fri", StartTime: "08:00", EndTime: "17:00", Enabled: true}
	err := repo.Create(context.Background(), window)
	require.NoError(t, err)
	assert.NotEmpty(t, window.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryToggleEnabled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("UPDATE availabilities SET enabled = NOT enabled").
		WithArgs(sqlmock.AnyArg(), "inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(false))

	enabled, err := repo.ToggleEnabledByInstructor(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryToggleEnabledMissingWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery("UPDATE availabilities SET enabled = NOT enabled").
		WithArgs(sqlmock.AnyArg(), "inst-missing").
		WillReturnRows(sqlmock.NewRows([]string{"enabled"}))

	_, err := repo.ToggleEnabledByInstructor(context.Background(), "inst-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryExistsForInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM availabilities WHERE instructor_id = $1 LIMIT 1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForInstructor(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
