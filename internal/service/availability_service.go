package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/timeslot"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	FindByInstructor(ctx context.Context, instructorID string) (*models.Availability, error)
	ExistsForInstructor(ctx context.Context, instructorID string) (bool, error)
	Create(ctx context.Context, window *models.Availability) error
	Update(ctx context.Context, window *models.Availability) error
	Delete(ctx context.Context, id string) (int64, error)
}

type availabilityInstructorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

// AssignAvailabilityRequest holds payload for assigning a schedule window.
type AssignAvailabilityRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	Weekdays     string `json:"weekdays" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Enabled      *bool  `json:"enabled"`
}

// UpdateAvailabilityRequest holds payload for rewriting a window.
type UpdateAvailabilityRequest struct {
	Weekdays  string `json:"weekdays" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Enabled   *bool  `json:"enabled"`
}

// AvailabilityService manages instructor schedule windows.
type AvailabilityService struct {
	repo        availabilityRepository
	instructors availabilityInstructorRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAvailabilityService constructs the availability service.
func NewAvailabilityService(repo availabilityRepository, instructors availabilityInstructorRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, instructors: instructors, cache: cache, validator: validate, logger: logger}
}

// List returns windows and pagination metadata.
func (s *AvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityDetail, *models.Pagination, error) {
	windows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return windows, pagination, nil
}

// Get returns a single window.
func (s *AvailabilityService) Get(ctx context.Context, id string) (*models.Availability, error) {
	window, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return window, nil
}

// Assign creates the instructor's window. Each instructor owns at most one, so
// a second assignment is a conflict rather than a silent overwrite.
func (s *AvailabilityService) Assign(ctx context.Context, req AssignAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if err := validateWindowFields(req.Weekdays, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	exists, err := s.repo.ExistsForInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing schedule")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor already has a schedule")
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	window := &models.Availability{
		InstructorID: req.InstructorID,
		Weekdays:     req.Weekdays,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Enabled:      enabled,
	}
	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return window, nil
}

// Update rewrites an existing window.
func (s *AvailabilityService) Update(ctx context.Context, id string, req UpdateAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if err := validateWindowFields(req.Weekdays, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	window, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	window.Weekdays = req.Weekdays
	window.StartTime = req.StartTime
	window.EndTime = req.EndTime
	if req.Enabled != nil {
		window.Enabled = *req.Enabled
	}
	if err := s.repo.Update(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return window, nil
}

// Delete removes a window.
func (s *AvailabilityService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
	}
	if deleted == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "availability not found")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}

func validateWindowFields(weekdays, startTime, endTime string) error {
	start, err := timeslot.ParseClock(startTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTimeFormat, "start_time must be HH:MM")
	}
	end, err := timeslot.ParseClock(endTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTimeFormat, "end_time must be HH:MM")
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "")
	}
	if _, err := timeslot.ParseWeekdays(weekdays); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "unrecognized weekday label")
	}
	return nil
}
