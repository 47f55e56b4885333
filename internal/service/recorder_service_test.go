package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	"github.com/noah-isme/absensi-rfid-api/internal/repository"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type fakeStudents struct {
	byTag map[string]*models.StudentDetail
	err   error
}

func (f *fakeStudents) FindActiveByTag(_ context.Context, tagID string) (*models.StudentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byTag[tagID], nil
}

// fakeRecords implements insert-if-absent semantics behind a mutex so the
// concurrency test exercises the real race shape.
type fakeRecords struct {
	mu        sync.Mutex
	records   map[string]*models.AttendanceRecord
	findErr   error
	insertErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: make(map[string]*models.AttendanceRecord)}
}

func recordKey(studentID, day string) string {
	return studentID + "|" + day
}

func (f *fakeRecords) FindByStudentAndDay(_ context.Context, studentID, day string) (*models.AttendanceRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[recordKey(studentID, day)], nil
}

func (f *fakeRecords) InsertIfAbsent(_ context.Context, record *models.AttendanceRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(record.StudentID, record.Day)
	if _, exists := f.records[key]; exists {
		return repository.ErrDuplicateRecord
	}
	record.ID = fmt.Sprintf("rec-%d", len(f.records)+1)
	stored := *record
	f.records[key] = &stored
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []dto.ScanEvent
}

func (f *fakeEvents) Publish(event dto.ScanEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testWindow(t *testing.T) window.Window {
	t.Helper()
	w, err := window.Parse("05:00", "07:00", "09:15")
	require.NoError(t, err)
	return w
}

func clockAt(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", "2026-09-01 "+clock)
	require.NoError(t, err)
	return parsed
}

func newTestRecorder(t *testing.T, students *fakeStudents, records *fakeRecords, events *fakeEvents, at time.Time) *RecorderService {
	t.Helper()
	var publisher scanEventPublisher
	if events != nil {
		publisher = events
	}
	return NewRecorderService(RecorderServiceParams{
		Students: students,
		Records:  records,
		Window:   testWindow(t),
		Events:   publisher,
		Now:      func() time.Time { return at },
	})
}

func hamdan() *models.StudentDetail {
	return &models.StudentDetail{
		Student: models.Student{
			ID:       "stu-1",
			TagID:    "9215d29",
			FullName: "HAMDAN",
			ClassID:  "cls-1",
			Active:   true,
		},
		ClassName: "XI TJKT 1",
	}
}

func TestRecordScanRejectsEmptyTag(t *testing.T) {
	svc := newTestRecorder(t, &fakeStudents{}, newFakeRecords(), nil, clockAt(t, "06:00:00"))

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordScanUnknownTag(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{}}
	svc := newTestRecorder(t, students, newFakeRecords(), nil, clockAt(t, "06:00:00"))

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownTag.Code, appErrors.FromError(err).Code)
}

func TestRecordScanOutsideWindow(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{"9215d29": hamdan()}}

	for _, clock := range []string{"04:59:59", "09:16:00"} {
		records := newFakeRecords()
		svc := newTestRecorder(t, students, records, nil, clockAt(t, clock))

		_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
		require.Error(t, err, clock)
		assert.Equal(t, appErrors.ErrOutsideWindow.Code, appErrors.FromError(err).Code, clock)
		assert.Empty(t, records.records, clock)
	}
}

func TestRecordScanStatusByClock(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{"9215d29": hamdan()}}

	tests := []struct {
		clock string
		want  models.Status
	}{
		{clock: "05:00:00", want: models.StatusOnTime},
		{clock: "07:00:00", want: models.StatusOnTime},
		{clock: "07:01:00", want: models.StatusLate},
		{clock: "09:15:00", want: models.StatusLate},
	}

	for _, tc := range tests {
		records := newFakeRecords()
		events := &fakeEvents{}
		svc := newTestRecorder(t, students, records, events, clockAt(t, tc.clock))

		result, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
		require.NoError(t, err, tc.clock)
		assert.Equal(t, tc.want, result.Status, tc.clock)
		assert.Equal(t, "2026-09-01", result.Day, tc.clock)
		assert.Equal(t, tc.clock, result.CheckedInAt, tc.clock)
		assert.Equal(t, "HAMDAN", result.StudentName, tc.clock)
		assert.Equal(t, 1, events.count(), tc.clock)
	}
}

func TestRecordScanSecondScanConflicts(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{"9215d29": hamdan()}}
	records := newFakeRecords()
	events := &fakeEvents{}
	svc := newTestRecorder(t, students, records, events, clockAt(t, "06:30:00"))

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
	require.NoError(t, err)

	_, err = svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyRecorded.Code, appErr.Code)
	// The conflict echoes the stored record, not the rejected scan.
	assert.Contains(t, appErr.Message, "ON_TIME")
	assert.Contains(t, appErr.Message, "06:30:00")

	assert.Len(t, records.records, 1)
	assert.Equal(t, 1, events.count())
}

func TestRecordScanConcurrentDuplicates(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{"9215d29": hamdan()}}
	records := newFakeRecords()
	svc := newTestRecorder(t, students, records, nil, clockAt(t, "06:30:00"))

	const n = 16
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	accepted, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}
		require.Equal(t, appErrors.ErrAlreadyRecorded.Code, appErrors.FromError(err).Code)
		conflicts++
	}

	assert.Equal(t, 1, accepted)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, records.records, 1)
}

func TestRecordScanStoreUnavailable(t *testing.T) {
	students := &fakeStudents{byTag: map[string]*models.StudentDetail{"9215d29": hamdan()}}
	records := newFakeRecords()
	records.insertErr = errors.New("connection refused")
	svc := newTestRecorder(t, students, records, nil, clockAt(t, "06:30:00"))

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}

func TestRecordScanResolverFailure(t *testing.T) {
	students := &fakeStudents{err: errors.New("connection refused")}
	svc := newTestRecorder(t, students, newFakeRecords(), nil, clockAt(t, "06:30:00"))

	_, err := svc.RecordScan(context.Background(), dto.ScanRequest{TagID: "9215d29"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}
