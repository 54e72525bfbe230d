package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gymtrack/gymtrack-api/internal/dto"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type fakeDashboardSrv struct {
	stats     *dto.DashboardStatsResponse
	statsHit  bool
	statsErr  error
	schedules []dto.InstructorScheduleEntry
	schedHit  bool
	schedErr  error
}

func (f *fakeDashboardSrv) Stats(context.Context) (*dto.DashboardStatsResponse, bool, error) {
	return f.stats, f.statsHit, f.statsErr
}

func (f *fakeDashboardSrv) InstructorSchedules(context.Context) ([]dto.InstructorScheduleEntry, bool, error) {
	return f.schedules, f.schedHit, f.schedErr
}

func TestDashboardHandlerStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		stats:    &dto.DashboardStatsResponse{TotalStudents: 12, TotalSessions: 30},
		statsHit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cached"])
	assert.Equal(t, float64(12), envelope.Data["totalStudents"])
}

func TestDashboardHandlerStatsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{statsErr: appErrors.ErrInternal})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerInstructorSchedules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		schedules: []dto.InstructorScheduleEntry{
			{InstructorID: "inst-1", FullName: "Marta Silva", HasSchedule: true},
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/instructor-schedules", nil)

	handler.InstructorSchedules(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope listEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, false, envelope.Meta["cached"])
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, "inst-1", envelope.Data[0]["instructorId"])
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

type listEnvelope struct {
	Data []map[string]interface{} `json:"data"`
	Meta map[string]interface{}   `json:"meta"`
}
