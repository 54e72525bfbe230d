package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/service"
	appErrors "github.com/gymtrack/gymtrack-api/pkg/errors"
)

type fakeSessionSrv struct {
	createErr  error
	created    *models.Session
	lastCreate service.CreateSessionRequest

	toggleResult bool
	toggleErr    error

	available    []models.Instructor
	availableErr error
	lastSlot     struct {
		date  string
		start string
		end   string
	}

	deleteErr error
}

func (f *fakeSessionSrv) List(context.Context, models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error) {
	return nil, nil, nil
}

func (f *fakeSessionSrv) Get(context.Context, string) (*models.Session, error) {
	return nil, appErrors.ErrNotFound
}

func (f *fakeSessionSrv) Create(_ context.Context, req service.CreateSessionRequest) (*models.Session, error) {
	f.lastCreate = req
	return f.created, f.createErr
}

func (f *fakeSessionSrv) Update(context.Context, string, service.UpdateSessionRequest) (*models.Session, error) {
	return nil, appErrors.ErrNotFound
}

func (f *fakeSessionSrv) ToggleCompleted(context.Context, string) (bool, error) {
	return f.toggleResult, f.toggleErr
}

func (f *fakeSessionSrv) Delete(context.Context, string) error {
	return f.deleteErr
}

func (f *fakeSessionSrv) AvailableInstructors(_ context.Context, date, start, end string) ([]models.Instructor, error) {
	f.lastSlot.date = date
	f.lastSlot.start = start
	f.lastSlot.end = end
	return f.available, f.availableErr
}

type errorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

func TestSessionHandlerCreateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope errorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestSessionHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSessionSrv{created: &models.Session{ID: "sess-1", Kind: models.SessionKindSimple}}
	handler := NewSessionHandler(srv)

	body := `{"kind":"simple","name":"Core strength","student_id":"stud-1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "stud-1", srv.lastCreate.StudentID)
	assert.Equal(t, "Core strength", srv.lastCreate.Name)
}

func TestSessionHandlerCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{createErr: appErrors.ErrTimeConflict})

	body := `{"kind":"personalized","name":"1:1 boxing","student_id":"stud-1","instructor_id":"inst-1","date":"2025-03-10","start_time":"09:00","end_time":"10:00"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope errorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "TIME_CONFLICT", envelope.Error.Code)
}

func TestSessionHandlerToggleCompleted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{toggleResult: true})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/sessions/sess-1/toggle-completed", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}

	handler.ToggleCompleted(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Data["completed"])
}

func TestSessionHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/sessions/sess-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}

	handler.Delete(c)
	// Outside a running engine gin defers the status write.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSessionHandlerAvailableInstructors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSessionSrv{available: []models.Instructor{{ID: "inst-1", FullName: "Marta Silva"}}}
	handler := NewSessionHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/instructors-available?date=2025-03-10&start=09:00&end=10:00", nil)

	handler.AvailableInstructors(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-10", srv.lastSlot.date)
	assert.Equal(t, "09:00", srv.lastSlot.start)
	assert.Equal(t, "10:00", srv.lastSlot.end)
	var envelope listEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Len(t, envelope.Data, 1)
}

func TestSessionHandlerAvailableInstructorsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&fakeSessionSrv{availableErr: appErrors.ErrInvalidTimeFormat})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/instructors-available?date=bad&start=9am&end=10am", nil)

	handler.AvailableInstructors(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
