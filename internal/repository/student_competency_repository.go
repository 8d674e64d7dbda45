package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// StudentCompetencyRepository handles per-student competency records.
type StudentCompetencyRepository struct {
	db *sqlx.DB
}

// NewStudentCompetencyRepository constructs the repository.
func NewStudentCompetencyRepository(db *sqlx.DB) *StudentCompetencyRepository {
	return &StudentCompetencyRepository{db: db}
}

// StatusForStudent joins the full catalog with the student's records.
func (r *StudentCompetencyRepository) StatusForStudent(ctx context.Context, studentID int64) ([]models.CompetencyStatus, error) {
	const query = `SELECT c.id, c.name, c.description, c.display_order, c.created_at,
    COALESCE(sc.is_achieved, FALSE) AS is_achieved, COALESCE(sc.notes, '') AS notes
FROM competencies c
LEFT JOIN student_competencies sc ON sc.competency_id = c.id AND sc.student_id = $1
ORDER BY c.display_order, c.name`
	var rows []models.CompetencyStatus
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student competency status: %w", err)
	}
	return rows, nil
}

// UpsertMany writes every update for the student in one transaction.
// Notes are only overwritten when the update carries them.
func (r *StudentCompetencyRepository) UpsertMany(ctx context.Context, studentID int64, updates []models.CompetencyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ordered := make([]models.CompetencyUpdate, len(updates))
	copy(ordered, updates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CompetencyID < ordered[j].CompetencyID })

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin competency upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	const query = `INSERT INTO student_competencies (student_id, competency_id, is_achieved, notes)
VALUES ($1, $2, $3, COALESCE($4, ''))
ON CONFLICT (student_id, competency_id)
DO UPDATE SET is_achieved = EXCLUDED.is_achieved,
    notes = COALESCE($4, student_competencies.notes),
    updated_at = NOW()`
	for _, u := range ordered {
		if _, err := tx.ExecContext(ctx, query, studentID, u.CompetencyID, u.IsAchieved, u.Notes); err != nil {
			return fmt.Errorf("upsert competency %d for student %d: %w", u.CompetencyID, studentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit competency upsert: %w", err)
	}
	commit = true
	return nil
}

// AchievedCount returns how many competencies the student has achieved.
func (r *StudentCompetencyRepository) AchievedCount(ctx context.Context, studentID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM student_competencies WHERE student_id = $1 AND is_achieved`, studentID); err != nil {
		return 0, fmt.Errorf("count achieved competencies: %w", err)
	}
	return n, nil
}
