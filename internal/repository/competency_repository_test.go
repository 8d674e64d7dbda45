package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

func TestCompetencyRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompetencyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM competencies")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCompetencyStatusDefaultsMissingRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentCompetencyRepository(db)

	mock.ExpectQuery(`COALESCE\(sc.is_achieved, FALSE\)`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "display_order", "created_at", "is_achieved", "notes"}).
			AddRow(1, "Estadística", "", 1, time.Now(), true, "bien").
			AddRow(2, "Regresión Logística", "", 2, time.Now(), false, ""))

	status, err := repo.StatusForStudent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.True(t, status[0].IsAchieved)
	assert.Equal(t, "bien", status[0].Notes)
	assert.False(t, status[1].IsAchieved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCompetencyUpsertManyKeepsNotesWhenOmitted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentCompetencyRepository(db)

	note := "needs practice"
	upsert := regexp.QuoteMeta("notes = COALESCE($4, student_competencies.notes)")
	mock.ExpectBegin()
	mock.ExpectExec(upsert).WithArgs(int64(3), int64(1), true, nil).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsert).WithArgs(int64(3), int64(2), false, note).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.UpsertMany(context.Background(), 3, []models.CompetencyUpdate{
		{CompetencyID: 2, IsAchieved: false, Notes: &note},
		{CompetencyID: 1, IsAchieved: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCompetencyAchievedCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentCompetencyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND is_achieved")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.AchievedCount(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompetencyRepositoryMissingIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM competencies WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	missing, err := NewCompetencyRepository(db).MissingIDs(context.Background(), []int64{1, 999})
	require.NoError(t, err)
	assert.Equal(t, []int64{999}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}
