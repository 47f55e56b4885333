package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/middleware"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
	"github.com/noah-isme/absensi-rfid-api/pkg/response"
)

type scanRecorder interface {
	RecordScan(ctx context.Context, req dto.ScanRequest) (*dto.ScanResult, error)
}

type rosterProjector interface {
	ProjectToday(ctx context.Context) (*dto.RosterResponse, bool, error)
	Classes(ctx context.Context) ([]models.Class, error)
}

// AttendanceHandler wires scan intake and the roster projection to HTTP.
type AttendanceHandler struct {
	recorder scanRecorder
	roster   rosterProjector
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(recorder scanRecorder, roster rosterProjector) *AttendanceHandler {
	return &AttendanceHandler{recorder: recorder, roster: roster}
}

// Scan godoc
// @Summary Submit an RFID scan
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body dto.ScanRequest true "Scan payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/scans [post]
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid scan payload"))
		return
	}
	if claims, ok := middleware.DeviceFromContext(c); ok {
		req.DeviceID = claims.DeviceID
	}

	result, err := h.recorder.RecordScan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Today godoc
// @Summary Today's attendance roster
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	start := time.Now()
	roster, cacheHit, err := h.roster.ProjectToday(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, roster, meta)
}

// Classes godoc
// @Summary List classes
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *AttendanceHandler) Classes(c *gin.Context) {
	classes, err := h.roster.Classes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}
