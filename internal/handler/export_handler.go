package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-rfid-api/internal/service"
	"github.com/noah-isme/absensi-rfid-api/pkg/response"
)

type rosterExporter interface {
	RenderToday(ctx context.Context, format string) (*service.ExportFile, error)
}

// ExportHandler serves downloadable attendance exports.
type ExportHandler struct {
	exporter rosterExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(exporter rosterExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Today godoc
// @Summary Export today's roster
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance/today/export [get]
func (h *ExportHandler) Today(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	file, err := h.exporter.RenderToday(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
