package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
	"github.com/noah-isme/absensi-rfid-api/pkg/export"
	"github.com/noah-isme/absensi-rfid-api/pkg/storage"
)

type rosterProjector interface {
	ProjectToday(ctx context.Context) (*dto.RosterResponse, bool, error)
}

// ExportService renders today's roster as a downloadable file. When an
// archive is configured every rendered file is also kept on disk, and old
// copies past the retention period are pruned after each render.
type ExportService struct {
	roster    rosterProjector
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	archive   *storage.Archive
	retention time.Duration
	logger    *zap.Logger
}

// NewExportService constructs the export service. Archive may be nil; a
// zero retention keeps archived copies forever.
func NewExportService(roster rosterProjector, archive *storage.Archive, retention time.Duration, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:    roster,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		archive:   archive,
		retention: retention,
		logger:    logger,
	}
}

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderToday projects the roster and renders it in the requested format,
// either "csv" or "pdf".
func (s *ExportService) RenderToday(ctx context.Context, format string) (*ExportFile, error) {
	roster, _, err := s.roster.ProjectToday(ctx)
	if err != nil {
		return nil, err
	}

	headers := []string{"Class", "Name", "Status", "Time"}
	rows := make([]map[string]string, 0, len(roster.Rows))
	for _, row := range roster.Rows {
		scanTime := ""
		if row.ScanTime != nil {
			scanTime = *row.ScanTime
		}
		rows = append(rows, map[string]string{
			"Class":  row.ClassName,
			"Name":   row.StudentName,
			"Status": string(row.Status),
			"Time":   scanTime,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	var file *ExportFile
	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("attendance_%s.csv", roster.Day),
		}
	case "pdf":
		title := fmt.Sprintf("Attendance %s", roster.Day)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file = &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("attendance_%s.pdf", roster.Day),
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	if s.archive != nil {
		// Best effort; the download still succeeds when the disk copy fails.
		path, err := s.archive.Save(file.Filename, file.Content)
		if err != nil {
			s.logger.Warn("failed to archive export", zap.String("file", file.Filename), zap.Error(err))
		} else {
			s.logger.Debug("export archived", zap.String("path", path))
		}
		if s.retention > 0 {
			if removed, err := s.archive.Prune(s.retention); err != nil {
				s.logger.Warn("failed to prune export archive", zap.Error(err))
			} else if removed > 0 {
				s.logger.Info("pruned export archive", zap.Int("removed", removed))
			}
		}
	}

	return file, nil
}
