package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/dto"
	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

const (
	dashboardStatsKey     = "dash:stats"
	dashboardSchedulesKey = "dash:schedules"

	// DashboardCachePattern matches every dashboard cache entry. Mutating
	// services invalidate it after successful writes.
	DashboardCachePattern = "dash:*"
)

type dashboardRepository interface {
	Counts(ctx context.Context) (*models.DashboardCounts, error)
	InstructorSchedules(ctx context.Context) ([]models.InstructorScheduleRow, error)
}

// DashboardService composes the admin overview payloads, with optional
// Redis-backed caching.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Stats returns the dashboard counters and indicates cache utilisation.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, bool, error) {
	var cached dto.DashboardStatsResponse
	if hit, err := s.cache.Get(ctx, dashboardStatsKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	stats := &dto.DashboardStatsResponse{
		TotalStudents:         counts.TotalStudents,
		TotalInstructors:      counts.TotalInstructors,
		TotalAvailabilities:   counts.TotalAvailabilities,
		TotalSessions:         counts.TotalSessions,
		EnabledAvailabilities: counts.EnabledAvailabilities,
	}
	if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, false, nil
}

// InstructorSchedules returns every instructor with its weekly window and
// indicates cache utilisation.
func (s *DashboardService) InstructorSchedules(ctx context.Context) ([]dto.InstructorScheduleEntry, bool, error) {
	var cached []dto.InstructorScheduleEntry
	if hit, err := s.cache.Get(ctx, dashboardSchedulesKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	rows, err := s.repo.InstructorSchedules(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor schedules")
	}
	entries := make([]dto.InstructorScheduleEntry, 0, len(rows))
	for _, row := range rows {
		entry := dto.InstructorScheduleEntry{
			InstructorID: row.InstructorID,
			FullName:     row.FullName,
			Email:        row.Email,
			Phone:        row.Phone,
		}
		if row.Weekdays != nil && row.StartTime != nil && row.EndTime != nil {
			entry.HasSchedule = true
			entry.Weekdays = *row.Weekdays
			entry.Hours = fmt.Sprintf("%s - %s", *row.StartTime, *row.EndTime)
			if row.Enabled != nil {
				entry.Enabled = *row.Enabled
			}
		}
		entries = append(entries, entry)
	}
	if err := s.cache.Set(ctx, dashboardSchedulesKey, entries, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache instructor schedules", zap.Error(err))
	}
	return entries, false, nil
}
