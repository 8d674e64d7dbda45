package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

const studentColumns = `s.id, s.first_name, s.last_name, s.email, s.github_username, s.is_active, s.created_at, s.last_name_normalized`

const rosterOrder = `ORDER BY s.last_name_normalized, s.first_name, s.id`

const studentSummarySelect = `SELECT ` + studentColumns + `,
    COALESCE(a.present_count, 0) AS present_count, COALESCE(a.absent_count, 0) AS absent_count,
    COALESCE(c.competencies_achieved, 0) AS competencies_achieved, COALESCE(c.competencies_total, 0) AS competencies_total
FROM students s
LEFT JOIN (
    SELECT student_id,
        COUNT(*) FILTER (WHERE is_present) AS present_count,
        COUNT(*) FILTER (WHERE NOT is_present) AS absent_count
    FROM attendance_records GROUP BY student_id
) a ON a.student_id = s.id
LEFT JOIN (
    SELECT student_id,
        COUNT(*) FILTER (WHERE is_achieved) AS competencies_achieved,
        COUNT(*) AS competencies_total
    FROM student_competencies GROUP BY student_id
) c ON c.student_id = s.id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByActive returns students with the given active flag in roster order.
func (r *StudentRepository) ListByActive(ctx context.Context, active bool) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.is_active = $1 ` + rosterOrder
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, active); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListSummaries returns active students with attendance and competency tallies.
func (r *StudentRepository) ListSummaries(ctx context.Context) ([]models.StudentSummary, error) {
	query := studentSummarySelect + ` WHERE s.is_active = TRUE ` + rosterOrder
	var rows []models.StudentSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list student summaries: %w", err)
	}
	return rows, nil
}

// FindSummary returns one student's tallies. Returns sql.ErrNoRows when missing.
func (r *StudentRepository) FindSummary(ctx context.Context, id int64) (*models.StudentSummary, error) {
	query := studentSummarySelect + ` WHERE s.id = $1`
	var row models.StudentSummary
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID fetches a student. Returns sql.ErrNoRows when missing.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// MissingIDs returns the subset of ids that do not exist.
func (r *StudentRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.db, "students", ids)
}

// ExistsByEmail checks if a student already uses email (case-insensitive).
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new student, filling ID and CreatedAt.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	student.Normalize()
	const query = `INSERT INTO students (first_name, last_name, email, github_username, is_active, last_name_normalized)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, student.FirstName, student.LastName, student.Email, student.GithubUsername, student.IsActive, student.LastNameNormalized)
	if err := row.Scan(&student.ID, &student.CreatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a student. Returns false when no row matched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (bool, error) {
	student.Normalize()
	const query = `UPDATE students SET first_name = $2, last_name = $3, email = $4, github_username = $5, last_name_normalized = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, student.ID, student.FirstName, student.LastName, student.Email, student.GithubUsername, student.LastNameNormalized)
	if err != nil {
		return false, fmt.Errorf("update student: %w", err)
	}
	return affected(res)
}

// SetActive flips the active flag. Returns false when nothing changed.
func (r *StudentRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	const query = `UPDATE students SET is_active = $2 WHERE id = $1 AND is_active <> $2`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return false, fmt.Errorf("set student active: %w", err)
	}
	return affected(res)
}

// Delete removes a student; attendance and competency rows go with it via ON DELETE CASCADE.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
