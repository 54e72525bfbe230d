package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/models"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) (int64, error)
}

type instructorAvailabilityRepository interface {
	DeleteByInstructor(ctx context.Context, instructorID string) error
	ToggleEnabledByInstructor(ctx context.Context, instructorID string) (bool, error)
}

type instructorSessionRepository interface {
	DetachByInstructor(ctx context.Context, instructorID string) error
}

// CreateInstructorRequest holds payload for registering instructors.
type CreateInstructorRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Age      int     `json:"age" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
}

// UpdateInstructorRequest holds payload for updating instructors.
type UpdateInstructorRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Age      int     `json:"age" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
}

// InstructorService handles instructor use-cases.
type InstructorService struct {
	repo         instructorRepository
	availability instructorAvailabilityRepository
	sessions     instructorSessionRepository
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(repo instructorRepository, availability instructorAvailabilityRepository, sessions instructorSessionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, availability: availability, sessions: sessions, cache: cache, validator: validate, logger: logger}
}

// List returns instructors and pagination metadata.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
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
	return instructors, pagination, nil
}

// Get returns a single instructor.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// Create registers a new instructor.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	if req.Age < models.MinInstructorAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("instructors must be at least %d years old", models.MinInstructorAge))
	}
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	instructor := &models.Instructor{
		FullName: req.FullName,
		Age:      req.Age,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return instructor, nil
}

// Update modifies an existing instructor.
func (s *InstructorService) Update(ctx context.Context, id string, req UpdateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	if req.Age < models.MinInstructorAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("instructors must be at least %d years old", models.MinInstructorAge))
	}
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if err := s.ensureEmailFree(ctx, req.Email, id); err != nil {
		return nil, err
	}
	instructor.FullName = req.FullName
	instructor.Age = req.Age
	instructor.Email = req.Email
	instructor.Phone = req.Phone
	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	return instructor, nil
}

// Delete removes an instructor and its schedule window. Sessions the
// instructor owned stay with their students, detached from the instructor.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	if err := s.availability.DeleteByInstructor(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor schedule")
	}
	if err := s.sessions.DetachByInstructor(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach instructor sessions")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	if deleted == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}

// ToggleAvailability flips the enabled flag on the instructor's window.
func (s *InstructorService) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return false, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	enabled, err := s.availability.ToggleEnabledByInstructor(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, appErrors.Clone(appErrors.ErrNotFound, "instructor has no schedule to toggle")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle schedule")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return enabled, nil
}

func (s *InstructorService) ensureEmailFree(ctx context.Context, email *string, excludeID string) error {
	if email == nil || *email == "" {
		return nil
	}
	exists, err := s.repo.ExistsByEmail(ctx, *email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	return nil
}
