package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type mockDashboardRepo struct {
	counts    models.DashboardCounts
	rows      []models.InstructorScheduleRow
	countHits int
}

func (m *mockDashboardRepo) Counts(ctx context.Context) (*models.DashboardCounts, error) {
	m.countHits++
	counts := m.counts
	return &counts, nil
}

func (m *mockDashboardRepo) InstructorSchedules(ctx context.Context) ([]models.InstructorScheduleRow, error) {
	return m.rows, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestDashboardServiceStats(t *testing.T) {
	repo := &mockDashboardRepo{counts: models.DashboardCounts{
		TotalStudents:         4,
		TotalInstructors:      2,
		TotalAvailabilities:   3,
		TotalSessions:         9,
		EnabledAvailabilities: 1,
	}}
	svc := NewDashboardService(repo, nil, zap.NewNop(), time.Minute)

	stats, cached, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalAvailabilities)
	assert.Equal(t, 1, stats.EnabledAvailabilities)
}

func TestDashboardServiceStatsUsesCache(t *testing.T) {
	repo := &mockDashboardRepo{counts: models.DashboardCounts{TotalStudents: 1}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(repo, cache, zap.NewNop(), time.Minute)

	_, cached, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.countHits)
}

func TestDashboardServiceInstructorSchedules(t *testing.T) {
	weekdays := "Mon-Fri"
	start := "08:00"
	end := "17:00"
	enabled := true
	repo := &mockDashboardRepo{rows: []models.InstructorScheduleRow{
		{InstructorID: "inst-1", FullName: "Ana", Weekdays: &weekdays, StartTime: &start, EndTime: &end, Enabled: &enabled},
		{InstructorID: "inst-2", FullName: "Bruno"},
	}}
	svc := NewDashboardService(repo, nil, zap.NewNop(), time.Minute)

	entries, cached, err := svc.InstructorSchedules(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].HasSchedule)
	assert.Equal(t, "08:00 - 17:00", entries[0].Hours)
	assert.False(t, entries[1].HasSchedule)
	assert.Empty(t, entries[1].Hours)
}
