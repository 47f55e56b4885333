package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
)

// StudentRepository reads the student and class registry. The registry is
// maintained elsewhere; this service never writes to it.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActive returns every active student joined with their class, ordered
// by class name then student name. The order is total (student id breaks
// ties) so repeated reads yield identical sequences.
func (r *StudentRepository) ListActive(ctx context.Context) ([]models.StudentDetail, error) {
	query := `SELECT s.id, s.tag_id, s.nis, s.full_name, s.class_id, s.active, s.created_at, s.updated_at,
        c.name AS class_name
FROM students s
JOIN classes c ON c.id = s.class_id
WHERE s.active
ORDER BY c.name, s.full_name, s.id`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// FindActiveByTag resolves an RFID tag to its active owner, nil when the tag
// is unbound or the student inactive.
func (r *StudentRepository) FindActiveByTag(ctx context.Context, tagID string) (*models.StudentDetail, error) {
	query := `SELECT s.id, s.tag_id, s.nis, s.full_name, s.class_id, s.active, s.created_at, s.updated_at,
        c.name AS class_name
FROM students s
JOIN classes c ON c.id = s.class_id
WHERE s.tag_id = $1 AND s.active`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, tagID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student by tag: %w", err)
	}
	return &student, nil
}

// ListClasses returns all classrooms ordered by name.
func (r *StudentRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	query := `SELECT id, name, created_at FROM classes ORDER BY name, id`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}
