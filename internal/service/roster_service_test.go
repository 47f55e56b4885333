package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type fakeRosterSource struct {
	students []models.StudentDetail
	classes  []models.Class
	err      error
}

func (f *fakeRosterSource) ListActive(context.Context) ([]models.StudentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.students, nil
}

func (f *fakeRosterSource) ListClasses(context.Context) ([]models.Class, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.classes, nil
}

type fakeRecordLister struct {
	records []models.AttendanceRecord
	err     error
}

func (f *fakeRecordLister) ListForDay(context.Context, string) ([]models.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func student(id, name, classID, className string) models.StudentDetail {
	return models.StudentDetail{
		Student:   models.Student{ID: id, FullName: name, ClassID: classID, Active: true},
		ClassName: className,
	}
}

func newTestRoster(t *testing.T, students *fakeRosterSource, records *fakeRecordLister, at time.Time) *RosterService {
	t.Helper()
	return NewRosterService(RosterServiceParams{
		Students: students,
		Records:  records,
		Window:   testWindow(t),
		Now:      func() time.Time { return at },
	})
}

func TestProjectTodayJoinsRecordsVerbatim(t *testing.T) {
	students := &fakeRosterSource{students: []models.StudentDetail{
		student("stu-1", "HAMDAN", "cls-1", "XI TJKT 1"),
		student("stu-2", "SALSA", "cls-1", "XI TJKT 1"),
		student("stu-3", "NAURA", "cls-1", "XI TJKT 1"),
	}}
	records := &fakeRecordLister{records: []models.AttendanceRecord{
		{ID: "rec-1", StudentID: "stu-1", Day: "2026-09-01", CheckedInAt: "06:45:00", Status: models.StatusOnTime},
		{ID: "rec-2", StudentID: "stu-2", Day: "2026-09-01", CheckedInAt: "07:20:00", Status: models.StatusLate},
	}}
	svc := newTestRoster(t, students, records, clockAt(t, "08:00:00"))

	resp, cacheHit, err := svc.ProjectToday(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)

	require.Len(t, resp.Rows, 3)
	byID := make(map[string]models.RosterRow, 3)
	for _, row := range resp.Rows {
		byID[row.StudentID] = row
	}

	assert.Equal(t, models.StatusOnTime, byID["stu-1"].Status)
	require.NotNil(t, byID["stu-1"].ScanTime)
	assert.Equal(t, "06:45:00", *byID["stu-1"].ScanTime)

	assert.Equal(t, models.StatusLate, byID["stu-2"].Status)

	// No record during the window means still waiting, not absent.
	assert.Equal(t, models.StatusNotYet, byID["stu-3"].Status)
	assert.Nil(t, byID["stu-3"].ScanTime)

	assert.Equal(t, models.RosterSummary{Total: 3, OnTime: 1, Late: 1, NotYet: 1}, resp.Summary)
	assert.Equal(t, "2026-09-01", resp.Day)
	assert.False(t, resp.WindowClosed)
}

func TestProjectTodayDerivesAbsentAfterWindow(t *testing.T) {
	students := &fakeRosterSource{students: []models.StudentDetail{
		student("stu-1", "HAMDAN", "cls-1", "XI TJKT 1"),
		student("stu-2", "SALSA", "cls-1", "XI TJKT 1"),
	}}
	records := &fakeRecordLister{records: []models.AttendanceRecord{
		{ID: "rec-1", StudentID: "stu-1", Day: "2026-09-01", CheckedInAt: "07:20:00", Status: models.StatusLate},
	}}
	svc := newTestRoster(t, students, records, clockAt(t, "10:00:00"))

	resp, _, err := svc.ProjectToday(context.Background())
	require.NoError(t, err)

	byID := make(map[string]models.RosterRow, 2)
	for _, row := range resp.Rows {
		byID[row.StudentID] = row
	}
	// The persisted LATE stays; only the missing record becomes ABSENT.
	assert.Equal(t, models.StatusLate, byID["stu-1"].Status)
	assert.Equal(t, models.StatusAbsent, byID["stu-2"].Status)
	assert.True(t, resp.WindowClosed)
	assert.Zero(t, resp.SecondsRemaining)
}

func TestProjectTodayOrdering(t *testing.T) {
	students := &fakeRosterSource{students: []models.StudentDetail{
		student("stu-4", "ZAHRA", "cls-2", "XI TJKT 2"),
		student("stu-2", "SALSA", "cls-1", "XI TJKT 1"),
		student("stu-3", "SALSA", "cls-1", "XI TJKT 1"),
		student("stu-1", "HAMDAN", "cls-1", "XI TJKT 1"),
	}}
	svc := newTestRoster(t, students, &fakeRecordLister{}, clockAt(t, "08:00:00"))

	resp, _, err := svc.ProjectToday(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		ids = append(ids, row.StudentID)
	}
	// Class name, then student name, then id as the tiebreaker.
	assert.Equal(t, []string{"stu-1", "stu-2", "stu-3", "stu-4"}, ids)
}

func TestProjectTodayAllOrNothing(t *testing.T) {
	students := &fakeRosterSource{students: []models.StudentDetail{
		student("stu-1", "HAMDAN", "cls-1", "XI TJKT 1"),
	}}
	records := &fakeRecordLister{err: errors.New("connection refused")}
	svc := newTestRoster(t, students, records, clockAt(t, "08:00:00"))

	resp, _, err := svc.ProjectToday(context.Background())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}

func TestProjectTodayRosterSourceFailure(t *testing.T) {
	students := &fakeRosterSource{err: errors.New("connection refused")}
	svc := newTestRoster(t, students, &fakeRecordLister{}, clockAt(t, "08:00:00"))

	_, _, err := svc.ProjectToday(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}

func TestClasses(t *testing.T) {
	students := &fakeRosterSource{classes: []models.Class{{ID: "cls-1", Name: "XI TJKT 1"}}}
	svc := newTestRoster(t, students, &fakeRecordLister{}, clockAt(t, "08:00:00"))

	classes, err := svc.Classes(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "XI TJKT 1", classes[0].Name)
}
