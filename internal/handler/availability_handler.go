package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/service"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
	"github.com/gymtrack/gymtrack-api/pkg/response"
)

// AvailabilityHandler exposes schedule-window endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// List godoc
// @Summary List schedule windows
// @Tags Availabilities
// @Produce json
// @Security BearerAuth
// @Param instructorId query string false "Filter by instructor"
// @Param enabled query bool false "Filter by enabled flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /availabilities [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	var filter models.AvailabilityFilter
	filter.InstructorID = c.Query("instructorId")
	if enabled := c.Query("enabled"); enabled != "" {
		if enabled == "true" {
			v := true
			filter.Enabled = &v
		} else if enabled == "false" {
			v := false
			filter.Enabled = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	windows, pagination, err := h.availability.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, pagination)
}

// Get godoc
// @Summary Get schedule window
// @Tags Availabilities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availabilities/{id} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	window, err := h.availability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Assign godoc
// @Summary Assign schedule window
// @Description Assigns the instructor's weekly window; each instructor owns at most one
// @Tags Availabilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignAvailabilityRequest true "Window payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /availabilities [post]
func (h *AvailabilityHandler) Assign(c *gin.Context) {
	var req service.AssignAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.availability.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// Update godoc
// @Summary Update schedule window
// @Tags Availabilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Availability ID"
// @Param payload body service.UpdateAvailabilityRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availabilities/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req service.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.availability.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Delete godoc
// @Summary Delete schedule window
// @Tags Availabilities
// @Security BearerAuth
// @Param id path string true "Availability ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /availabilities/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.availability.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
