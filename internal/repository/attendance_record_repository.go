package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// AttendanceRecordRepository handles persistence for per-student attendance rows.
type AttendanceRecordRepository struct {
	db *sqlx.DB
}

// NewAttendanceRecordRepository constructs the repository.
func NewAttendanceRecordRepository(db *sqlx.DB) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: db}
}

// UpsertMany writes every mark for the session in one transaction.
// Rows are written in ascending student id so concurrent saves lock in the same order.
func (r *AttendanceRecordRepository) UpsertMany(ctx context.Context, sessionID int64, marks map[int64]bool) error {
	if len(marks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	const query = `INSERT INTO attendance_records (student_id, session_id, is_present)
VALUES ($1, $2, $3)
ON CONFLICT (student_id, session_id)
DO UPDATE SET is_present = EXCLUDED.is_present, updated_at = NOW()`
	for _, studentID := range sortedKeys(marks) {
		if _, err := tx.ExecContext(ctx, query, studentID, sessionID, marks[studentID]); err != nil {
			return fmt.Errorf("upsert attendance record for student %d: %w", studentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	commit = true
	return nil
}

// PresenceBySession maps student id to presence flag for one session.
func (r *AttendanceRecordRepository) PresenceBySession(ctx context.Context, sessionID int64) (map[int64]bool, error) {
	rows := []struct {
		StudentID int64 `db:"student_id"`
		IsPresent bool  `db:"is_present"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT student_id, is_present FROM attendance_records WHERE session_id = $1`, sessionID); err != nil {
		return nil, fmt.Errorf("load session presence: %w", err)
	}
	result := make(map[int64]bool, len(rows))
	for _, row := range rows {
		result[row.StudentID] = row.IsPresent
	}
	return result, nil
}

// Counts tallies present and absent records of a session.
func (r *AttendanceRecordRepository) Counts(ctx context.Context, sessionID int64) (models.SessionCounts, error) {
	const query = `SELECT COUNT(*) FILTER (WHERE is_present) AS present_count,
    COUNT(*) FILTER (WHERE NOT is_present) AS absent_count
FROM attendance_records WHERE session_id = $1`
	var counts models.SessionCounts
	if err := r.db.GetContext(ctx, &counts, query, sessionID); err != nil {
		return models.SessionCounts{}, fmt.Errorf("count session records: %w", err)
	}
	return counts, nil
}

// ListBySession returns a session's records with student names in roster order.
func (r *AttendanceRecordRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecord, error) {
	const query = `SELECT r.id, r.student_id, r.session_id, r.is_present, r.created_at, r.updated_at,
    s.first_name, s.last_name
FROM attendance_records r
JOIN students s ON s.id = r.student_id
WHERE r.session_id = $1
ORDER BY s.last_name_normalized, s.first_name, s.id`
	var rows []models.SessionRecord
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	return rows, nil
}
