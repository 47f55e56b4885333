package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type rosterSource interface {
	ListActive(ctx context.Context) ([]models.StudentDetail, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
}

type recordLister interface {
	ListForDay(ctx context.Context, day string) ([]models.AttendanceRecord, error)
}

// RosterService projects the daily roster: every active student joined with
// today's record, a status derived through the same window the recorder uses
// for those without one.
type RosterService struct {
	students rosterSource
	records  recordLister
	window   window.Window
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// RosterServiceParams groups constructor dependencies.
type RosterServiceParams struct {
	Students rosterSource
	Records  recordLister
	Window   window.Window
	Cache    *CacheService
	CacheTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewRosterService constructs the projector.
func NewRosterService(params RosterServiceParams) *RosterService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RosterService{
		students: params.Students,
		records:  params.Records,
		window:   params.Window,
		cache:    params.Cache,
		cacheTTL: ttl,
		logger:   logger,
		now:      now,
	}
}

// ProjectToday returns the full ordered roster with status for the current
// civil day. The projection is all-or-nothing: any store failure fails the
// whole call rather than producing a partial roster. The second return value
// reports cache utilisation.
func (s *RosterService) ProjectToday(ctx context.Context) (*dto.RosterResponse, bool, error) {
	now := s.now()
	day := window.Day(now)
	phase := s.window.Classify(now)

	// The phase is part of the key so a projection cached moments before
	// the window closes can never serve a stale NOT_YET past the boundary.
	cacheKey := fmt.Sprintf("roster:%s:%s", day, phase)
	if s.cache != nil {
		var cached dto.RosterResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load roster")
	}
	records, err := s.records.ListForDay(ctx, day)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load attendance records")
	}

	byStudent := make(map[string]*models.AttendanceRecord, len(records))
	for i := range records {
		byStudent[records[i].StudentID] = &records[i]
	}

	derived := models.DerivedStatus(phase)
	rows := make([]models.RosterRow, 0, len(students))
	summary := models.RosterSummary{Total: len(students)}
	for _, student := range students {
		row := models.RosterRow{
			StudentID:   student.ID,
			StudentName: student.FullName,
			ClassID:     student.ClassID,
			ClassName:   student.ClassName,
		}
		if record, ok := byStudent[student.ID]; ok {
			// Persisted facts pass through verbatim, never re-derived.
			row.Status = record.Status
			scanTime := record.CheckedInAt
			row.ScanTime = &scanTime
		} else {
			row.Status = derived
		}
		switch row.Status {
		case models.StatusOnTime:
			summary.OnTime++
		case models.StatusLate:
			summary.Late++
		case models.StatusNotYet:
			summary.NotYet++
		case models.StatusAbsent:
			summary.Absent++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ClassName != rows[j].ClassName {
			return rows[i].ClassName < rows[j].ClassName
		}
		if rows[i].StudentName != rows[j].StudentName {
			return rows[i].StudentName < rows[j].StudentName
		}
		return rows[i].StudentID < rows[j].StudentID
	})

	resp := &dto.RosterResponse{
		Day:              day,
		GeneratedAt:      now,
		WindowStart:      s.window.Start.String(),
		OnTimeDeadline:   s.window.OnTimeDeadline.String(),
		WindowEnd:        s.window.End.String(),
		WindowClosed:     s.window.Closed(now),
		SecondsRemaining: int64(s.window.Remaining(now).Seconds()),
		Summary:          summary,
		Rows:             rows,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache set failed", zap.Error(err))
		}
	}

	return resp, false, nil
}

// Classes lists the classrooms for board filters.
func (s *RosterService) Classes(ctx context.Context) ([]models.Class, error) {
	classes, err := s.students.ListClasses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load classes")
	}
	return classes, nil
}
