package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/service"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
	"github.com/gymtrack/gymtrack-api/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, req service.CreateSessionRequest) (*models.Session, error)
	Update(ctx context.Context, id string, req service.UpdateSessionRequest) (*models.Session, error)
	ToggleCompleted(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	AvailableInstructors(ctx context.Context, date, start, end string) ([]models.Instructor, error)
}

// SessionHandler exposes training-session endpoints.
type SessionHandler struct {
	sessions sessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param instructorId query string false "Filter by instructor"
// @Param kind query string false "Filter by kind (simple or personalized)"
// @Param completed query bool false "Filter by completion"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.StudentID = c.Query("studentId")
	filter.InstructorID = c.Query("instructorId")
	filter.Kind = c.Query("kind")
	if completed := c.Query("completed"); completed != "" {
		if completed == "true" {
			v := true
			filter.Completed = &v
		} else if completed == "false" {
			v := false
			filter.Completed = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Create session
// @Description Creates a simple or personalized session; personalized slots are conflict-checked
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body service.UpdateSessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ToggleCompleted godoc
// @Summary Toggle session completion
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/toggle-completed [patch]
func (h *SessionHandler) ToggleCompleted(c *gin.Context) {
	completed, err := h.sessions.ToggleCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"completed": completed}, nil)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AvailableInstructors godoc
// @Summary List bookable instructors
// @Description Instructors whose window covers the slot and who have no overlapping session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Slot start (HH:MM)"
// @Param end query string true "Slot end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors-available [get]
func (h *SessionHandler) AvailableInstructors(c *gin.Context) {
	instructors, err := h.sessions.AvailableInstructors(c.Request.Context(), c.Query("date"), c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}
