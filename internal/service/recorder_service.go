package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	"github.com/noah-isme/absensi-rfid-api/internal/repository"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type tagResolver interface {
	FindActiveByTag(ctx context.Context, tagID string) (*models.StudentDetail, error)
}

type recordStore interface {
	FindByStudentAndDay(ctx context.Context, studentID, day string) (*models.AttendanceRecord, error)
	InsertIfAbsent(ctx context.Context, record *models.AttendanceRecord) error
}

type scanEventPublisher interface {
	Publish(event dto.ScanEvent)
}

// RecorderService accepts RFID scans and turns them into attendance records.
// It holds no cross-request state: the one-record-per-student-per-day
// invariant lives in the store's unique constraint, so any number of
// instances can run against one database.
type RecorderService struct {
	students  tagResolver
	records   recordStore
	window    window.Window
	events    scanEventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// RecorderServiceParams groups constructor dependencies.
type RecorderServiceParams struct {
	Students tagResolver
	Records  recordStore
	Window   window.Window
	Events   scanEventPublisher
	Metrics  *MetricsService
	Validate *validator.Validate
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewRecorderService constructs the recorder.
func NewRecorderService(params RecorderServiceParams) *RecorderService {
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &RecorderService{
		students:  params.Students,
		records:   params.Records,
		window:    params.Window,
		events:    params.Events,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       now,
	}
}

// RecordScan resolves the tag, classifies the scan against the window and
// persists at most one record per student per day. The timestamp comes from
// the service clock, never from the scanning device. Duplicate detection is
// done twice: a cheap pre-check read, then the store's atomic insert; losing
// the insert race answers exactly like the pre-check duplicate.
func (s *RecorderService) RecordScan(ctx context.Context, req dto.ScanRequest) (*dto.ScanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.countOutcome("validation_error")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tag_id is required")
	}

	now := s.now()
	day := window.Day(now)

	student, err := s.students.FindActiveByTag(ctx, req.TagID)
	if err != nil {
		s.countOutcome("store_unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	if student == nil {
		s.countOutcome("unknown_tag")
		return nil, appErrors.ErrUnknownTag
	}

	phase := s.window.Classify(now)
	status, ok := models.StatusForPhase(phase)
	if !ok {
		s.countOutcome("outside_window")
		return nil, appErrors.Clone(appErrors.ErrOutsideWindow,
			fmt.Sprintf("scans are accepted between %s and %s", s.window.Start, s.window.End))
	}

	if existing, err := s.records.FindByStudentAndDay(ctx, student.ID, day); err != nil {
		s.countOutcome("store_unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	} else if existing != nil {
		s.countOutcome("already_recorded")
		return nil, s.alreadyRecorded(existing)
	}

	record := &models.AttendanceRecord{
		StudentID:   student.ID,
		Day:         day,
		CheckedInAt: now.Format("15:04:05"),
		Status:      status,
	}
	if err := s.records.InsertIfAbsent(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			// Lost a race against a concurrent scan of the same tag.
			s.countOutcome("already_recorded")
			stored, findErr := s.records.FindByStudentAndDay(ctx, student.ID, day)
			if findErr != nil || stored == nil {
				return nil, appErrors.ErrAlreadyRecorded
			}
			return nil, s.alreadyRecorded(stored)
		}
		s.countOutcome("store_unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}

	s.countOutcome("accepted")
	s.logger.Info("scan accepted",
		zap.String("student_id", student.ID),
		zap.String("day", day),
		zap.String("status", string(status)),
	)

	if s.events != nil {
		s.events.Publish(dto.ScanEvent{
			RecordID:    record.ID,
			StudentID:   student.ID,
			StudentName: student.FullName,
			ClassName:   student.ClassName,
			Status:      status,
			Day:         day,
			CheckedInAt: record.CheckedInAt,
			DeviceID:    req.DeviceID,
			EmittedAt:   now,
		})
	}

	return &dto.ScanResult{
		Status:      status,
		StudentID:   student.ID,
		StudentName: student.FullName,
		ClassName:   student.ClassName,
		Day:         day,
		CheckedInAt: record.CheckedInAt,
	}, nil
}

func (s *RecorderService) alreadyRecorded(record *models.AttendanceRecord) error {
	return appErrors.Clone(appErrors.ErrAlreadyRecorded,
		fmt.Sprintf("already recorded as %s at %s", record.Status, record.CheckedInAt))
}

func (s *RecorderService) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordScanOutcome(outcome)
	}
}
