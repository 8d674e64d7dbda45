package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// AttendanceSessionRepository handles persistence for attendance sessions.
type AttendanceSessionRepository struct {
	db *sqlx.DB
}

// NewAttendanceSessionRepository constructs the repository.
func NewAttendanceSessionRepository(db *sqlx.DB) *AttendanceSessionRepository {
	return &AttendanceSessionRepository{db: db}
}

// GetOrCreate returns the session for day (YYYY-MM-DD), inserting it when
// absent. The no-op DO UPDATE makes RETURNING yield the existing row, so
// concurrent first visits resolve to one session without a read-then-write.
func (r *AttendanceSessionRepository) GetOrCreate(ctx context.Context, day string, description string) (*models.AttendanceSession, error) {
	const query = `INSERT INTO attendance_sessions (date, description)
VALUES ($1, $2)
ON CONFLICT (date)
DO UPDATE SET date = EXCLUDED.date
RETURNING id, date, description, created_at`
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, day, description); err != nil {
		return nil, fmt.Errorf("get or create attendance session: %w", err)
	}
	return &session, nil
}

// FindByID fetches a session. Returns sql.ErrNoRows when missing.
func (r *AttendanceSessionRepository) FindByID(ctx context.Context, id int64) (*models.AttendanceSession, error) {
	const query = `SELECT id, date, description, created_at FROM attendance_sessions WHERE id = $1`
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListWithStats returns every session, most recent first, with record tallies.
func (r *AttendanceSessionRepository) ListWithStats(ctx context.Context) ([]models.SessionStats, error) {
	const query = `SELECT s.id, s.date, s.description, s.created_at,
    COUNT(r.id) FILTER (WHERE r.is_present) AS present_count,
    COUNT(r.id) FILTER (WHERE NOT r.is_present) AS absent_count
FROM attendance_sessions s
LEFT JOIN attendance_records r ON r.session_id = s.id
GROUP BY s.id
ORDER BY s.date DESC`
	var rows []models.SessionStats
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list attendance sessions: %w", err)
	}
	return rows, nil
}
