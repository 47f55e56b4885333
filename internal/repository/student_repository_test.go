package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func studentColumns() []string {
	return []string{"id", "tag_id", "nis", "full_name", "class_id", "active", "created_at", "updated_at", "class_name"}
}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(studentColumns()).
		AddRow("stu-1", "9215d29", "23241001", "HAMDAN", "cls-1", true, now, now, "XI TJKT 1").
		AddRow("stu-2", "f2c8bdd", "23241002", "SALSA", "cls-1", true, now, now, "XI TJKT 1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s")).WillReturnRows(rows)

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "HAMDAN", students[0].FullName)
	require.Equal(t, "XI TJKT 1", students[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindActiveByTag(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(studentColumns()).
		AddRow("stu-1", "9215d29", "23241001", "HAMDAN", "cls-1", true, now, now, "XI TJKT 1")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.tag_id = $1 AND s.active")).
		WithArgs("9215d29").
		WillReturnRows(rows)

	student, err := repo.FindActiveByTag(context.Background(), "9215d29")
	require.NoError(t, err)
	require.NotNil(t, student)
	require.Equal(t, "stu-1", student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindActiveByTagMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.tag_id = $1 AND s.active")).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(studentColumns()))

	student, err := repo.FindActiveByTag(context.Background(), "unknown")
	require.NoError(t, err)
	require.Nil(t, student)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListClasses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "created_at"}).
		AddRow("cls-1", "XI TJKT 1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at FROM classes")).
		WillReturnRows(rows)

	classes, err := repo.ListClasses(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, "XI TJKT 1", classes[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
