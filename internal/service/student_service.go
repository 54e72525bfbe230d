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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (int64, error)
}

type studentSessionRepository interface {
	DeleteByStudent(ctx context.Context, studentID string) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Age      int     `json:"age" validate:"required"`
	Address  *string `json:"address"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Age      int     `json:"age" validate:"required"`
	Address  *string `json:"address"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	sessions  studentSessionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, sessions studentSessionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, sessions: sessions, cache: cache, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.Age < models.MinStudentAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("students must be at least %d years old", models.MinStudentAge))
	}
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	student := &models.Student{
		FullName: req.FullName,
		Age:      req.Age,
		Address:  req.Address,
		Email:    req.Email,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.Age < models.MinStudentAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("students must be at least %d years old", models.MinStudentAge))
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.ensureEmailFree(ctx, req.Email, id); err != nil {
		return nil, err
	}
	student.FullName = req.FullName
	student.Age = req.Age
	student.Address = req.Address
	student.Email = req.Email
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and every session the student owns.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.sessions.DeleteByStudent(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student sessions")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if deleted == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}

func (s *StudentService) ensureEmailFree(ctx context.Context, email *string, excludeID string) error {
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
