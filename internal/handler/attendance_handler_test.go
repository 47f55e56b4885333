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
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeRecorderSrv struct {
	result  *dto.ScanResult
	err     error
	lastReq dto.ScanRequest
}

func (f *fakeRecorderSrv) RecordScan(_ context.Context, req dto.ScanRequest) (*dto.ScanResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeRosterSrv struct {
	roster  *dto.RosterResponse
	hit     bool
	err     error
	classes []models.Class
}

func (f *fakeRosterSrv) ProjectToday(context.Context) (*dto.RosterResponse, bool, error) {
	return f.roster, f.hit, f.err
}

func (f *fakeRosterSrv) Classes(context.Context) ([]models.Class, error) {
	return f.classes, f.err
}

func postScan(t *testing.T, h *AttendanceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/scans", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Scan(c)
	return rec
}

func TestAttendanceHandlerScanCreated(t *testing.T) {
	recorder := &fakeRecorderSrv{result: &dto.ScanResult{
		Status:      models.StatusOnTime,
		StudentID:   "stu-1",
		StudentName: "HAMDAN",
		ClassName:   "XI TJKT 1",
		Day:         "2026-09-01",
		CheckedInAt: "06:45:00",
	}}
	h := NewAttendanceHandler(recorder, &fakeRosterSrv{})

	rec := postScan(t, h, `{"tag_id":"9215d29"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ON_TIME", envelope.Data["status"])
	assert.Equal(t, "HAMDAN", envelope.Data["student_name"])
	assert.Equal(t, "9215d29", recorder.lastReq.TagID)
}

func TestAttendanceHandlerScanInvalidBody(t *testing.T) {
	h := NewAttendanceHandler(&fakeRecorderSrv{}, &fakeRosterSrv{})

	rec := postScan(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerScanErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unknown tag", err: appErrors.ErrUnknownTag, want: http.StatusNotFound},
		{name: "outside window", err: appErrors.ErrOutsideWindow, want: http.StatusUnprocessableEntity},
		{name: "already recorded", err: appErrors.ErrAlreadyRecorded, want: http.StatusConflict},
		{name: "store unavailable", err: appErrors.ErrStoreUnavailable, want: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAttendanceHandler(&fakeRecorderSrv{err: tc.err}, &fakeRosterSrv{})

			rec := postScan(t, h, `{"tag_id":"9215d29"}`)

			assert.Equal(t, tc.want, rec.Code)
			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, appErrors.FromError(tc.err).Code, envelope.Error["code"])
		})
	}
}

func TestAttendanceHandlerToday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	scanTime := "06:45:00"
	roster := &dto.RosterResponse{
		Day: "2026-09-01",
		Rows: []models.RosterRow{
			{StudentID: "stu-1", StudentName: "HAMDAN", ClassName: "XI TJKT 1", Status: models.StatusOnTime, ScanTime: &scanTime},
		},
		Summary: models.RosterSummary{Total: 1, OnTime: 1},
	}
	h := NewAttendanceHandler(&fakeRecorderSrv{}, &fakeRosterSrv{roster: roster, hit: true})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
	h.Today(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	assert.Equal(t, "2026-09-01", envelope.Data["day"])
}

func TestAttendanceHandlerTodayUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&fakeRecorderSrv{}, &fakeRosterSrv{err: appErrors.ErrStoreUnavailable})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
	h.Today(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAttendanceHandlerClasses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&fakeRecorderSrv{}, &fakeRosterSrv{classes: []models.Class{{ID: "cls-1", Name: "XI TJKT 1"}}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/classes", nil)
	h.Classes(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}
