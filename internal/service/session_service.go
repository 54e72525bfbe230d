package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/scheduling"
	"github.com/gymtrack/gymtrack-api/internal/timeslot"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	CreateBooked(ctx context.Context, session *models.Session, check func(existing []models.Session) error) error
	UpdateBooked(ctx context.Context, session *models.Session, check func(existing []models.Session) error) error
	ToggleCompleted(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListByDate(ctx context.Context, date string) (map[string][]models.Session, error)
}

type sessionStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type sessionInstructorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	ListAll(ctx context.Context) ([]models.Instructor, error)
}

type sessionAvailabilityRepository interface {
	FindByInstructor(ctx context.Context, instructorID string) (*models.Availability, error)
	ListAll(ctx context.Context) (map[string]*models.Availability, error)
}

// CreateSessionRequest holds payload for creating sessions. Personalized
// sessions carry the instructor/date/time fields together; simple sessions
// carry none of them.
type CreateSessionRequest struct {
	Kind         string  `json:"kind" validate:"required,oneof=simple personalized"`
	Name         string  `json:"name" validate:"required"`
	StudentID    string  `json:"student_id" validate:"required"`
	InstructorID *string `json:"instructor_id"`
	Date         *string `json:"date"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Description  *string `json:"description"`
	Level        *string `json:"level"`
}

// UpdateSessionRequest holds payload for rewriting sessions.
type UpdateSessionRequest struct {
	Kind         string  `json:"kind" validate:"required,oneof=simple personalized"`
	Name         string  `json:"name" validate:"required"`
	StudentID    string  `json:"student_id" validate:"required"`
	InstructorID *string `json:"instructor_id"`
	Date         *string `json:"date"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Description  *string `json:"description"`
	Level        *string `json:"level"`
}

// bookingSlot is a parsed, validated personalized slot.
type bookingSlot struct {
	date  timeslot.DateStamp
	start timeslot.TimeOfDay
	end   timeslot.TimeOfDay
}

// SessionService handles training-session use-cases, including conflict-free
// booking of personalized sessions.
type SessionService struct {
	repo         sessionRepository
	students     sessionStudentRepository
	instructors  sessionInstructorRepository
	availability sessionAvailabilityRepository
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionRepository, students sessionStudentRepository, instructors sessionInstructorRepository, availability sessionAvailabilityRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:         repo,
		students:     students,
		instructors:  instructors,
		availability: availability,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// List returns sessions and pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
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
	return sessions, pagination, nil
}

// Get returns a single session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Create registers a new session. Personalized sessions are booked inside the
// repository transaction so concurrent requests for the same instructor
// cannot both land on an overlapping slot.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}

	session := &models.Session{
		Kind:        req.Kind,
		Name:        req.Name,
		StudentID:   req.StudentID,
		Description: req.Description,
		Level:       req.Level,
	}

	if req.Kind == models.SessionKindSimple {
		if req.InstructorID != nil || req.Date != nil || req.StartTime != nil || req.EndTime != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "simple sessions cannot carry instructor or time fields")
		}
		if err := s.repo.Create(ctx, session); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}
		_ = s.cache.Invalidate(ctx, DashboardCachePattern)
		return session, nil
	}

	slot, err := s.prepareBooking(ctx, req.InstructorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	session.InstructorID = req.InstructorID
	session.Date = req.Date
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime

	window, err := s.windowFor(ctx, *req.InstructorID)
	if err != nil {
		return nil, err
	}
	err = s.repo.CreateBooked(ctx, session, func(existing []models.Session) error {
		return scheduling.CheckBookable(window, slot.date, slot.start, slot.end, existing)
	})
	if err != nil {
		return nil, s.bookingError(err)
	}
	s.metrics.RecordBooking("booked")
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return session, nil
}

// Update rewrites a session. When the result is personalized the slot is
// re-validated under the booking transaction, excluding the session itself.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}

	session.Kind = req.Kind
	session.Name = req.Name
	session.StudentID = req.StudentID
	session.Description = req.Description
	session.Level = req.Level

	if req.Kind == models.SessionKindSimple {
		if req.InstructorID != nil || req.Date != nil || req.StartTime != nil || req.EndTime != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "simple sessions cannot carry instructor or time fields")
		}
		session.InstructorID = nil
		session.Date = nil
		session.StartTime = nil
		session.EndTime = nil
		if err := s.repo.Update(ctx, session); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
		}
		_ = s.cache.Invalidate(ctx, DashboardCachePattern)
		return session, nil
	}

	slot, err := s.prepareBooking(ctx, req.InstructorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	session.InstructorID = req.InstructorID
	session.Date = req.Date
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime

	window, err := s.windowFor(ctx, *req.InstructorID)
	if err != nil {
		return nil, err
	}
	err = s.repo.UpdateBooked(ctx, session, func(existing []models.Session) error {
		return scheduling.CheckBookable(window, slot.date, slot.start, slot.end, existing)
	})
	if err != nil {
		return nil, s.bookingError(err)
	}
	s.metrics.RecordBooking("booked")
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return session, nil
}

// ToggleCompleted flips the completed flag and returns the new state.
func (s *SessionService) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	completed, err := s.repo.ToggleCompleted(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle session")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return completed, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	if deleted == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}

// AvailableInstructors lists instructors bookable for the requested slot,
// ordered by id.
func (s *SessionService) AvailableInstructors(ctx context.Context, dateRaw, startRaw, endRaw string) ([]models.Instructor, error) {
	date, err := timeslot.ParseDate(dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "date must be YYYY-MM-DD")
	}
	start, err := timeslot.ParseClock(startRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "start must be HH:MM")
	}
	end, err := timeslot.ParseClock(endRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "end must be HH:MM")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}

	instructors, err := s.instructors.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	windows, err := s.availability.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	sessions, err := s.repo.ListByDate(ctx, date.String())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return scheduling.AvailableInstructors(date, start, end, instructors, windows, sessions), nil
}

// prepareBooking enforces the all-or-nothing rule on the personalized fields
// and parses the slot.
func (s *SessionService) prepareBooking(ctx context.Context, instructorID, dateRaw, startRaw, endRaw *string) (*bookingSlot, error) {
	if instructorID == nil || dateRaw == nil || startRaw == nil || endRaw == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personalized sessions require instructor_id, date, start_time and end_time")
	}
	date, err := timeslot.ParseDate(*dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "date must be YYYY-MM-DD")
	}
	start, err := timeslot.ParseClock(*startRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "start_time must be HH:MM")
	}
	end, err := timeslot.ParseClock(*endRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimeFormat, "end_time must be HH:MM")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}
	if _, err := s.instructors.FindByID(ctx, *instructorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return &bookingSlot{date: date, start: start, end: end}, nil
}

// windowFor loads the instructor's window; a missing row maps to no window,
// which the conflict check rejects as unavailable.
func (s *SessionService) windowFor(ctx context.Context, instructorID string) (*models.Availability, error) {
	window, err := s.availability.FindByInstructor(ctx, instructorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return window, nil
}

func (s *SessionService) ensureStudent(ctx context.Context, studentID string) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}

// bookingError keeps typed conflict reasons intact, counts them, and wraps
// everything else as internal.
func (s *SessionService) bookingError(err error) error {
	if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
		s.metrics.RecordBooking(appErr.Code)
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book session")
}
