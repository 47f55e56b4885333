package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
)

// ErrDuplicateRecord signals that a record for the (student, day) pair
// already exists. InsertIfAbsent returns it for both a lost insert race and
// a plain duplicate; callers treat the two identically.
var ErrDuplicateRecord = errors.New("attendance record already exists for student and day")

// AttendanceRepository persists accepted scans.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByStudentAndDay returns the record for a student on a civil day, or
// nil when none exists.
func (r *AttendanceRepository) FindByStudentAndDay(ctx context.Context, studentID, day string) (*models.AttendanceRecord, error) {
	query := `SELECT id, student_id, day::text AS day, checked_in_at::text AS checked_in_at, status, created_at
FROM attendance
WHERE student_id = $1 AND day = $2`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &record, nil
}

// InsertIfAbsent atomically inserts the record unless one already exists for
// the (student, day) pair. The unique constraint is the authority on
// duplicates, not any preceding read.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO attendance (id, student_id, day, checked_in_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, day) DO NOTHING
RETURNING id`
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query, record.ID, record.StudentID, record.Day, record.CheckedInAt, record.Status, record.CreatedAt).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicateRecord
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// ListForDay returns all records for a civil day.
func (r *AttendanceRepository) ListForDay(ctx context.Context, day string) ([]models.AttendanceRecord, error) {
	query := `SELECT id, student_id, day::text AS day, checked_in_at::text AS checked_in_at, status, created_at
FROM attendance
WHERE day = $1`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, day); err != nil {
		return nil, fmt.Errorf("list attendance records for day: %w", err)
	}
	return records, nil
}
