package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CompetencyRepository reads the competency catalog.
type CompetencyRepository struct {
	db *sqlx.DB
}

// NewCompetencyRepository constructs the repository.
func NewCompetencyRepository(db *sqlx.DB) *CompetencyRepository {
	return &CompetencyRepository{db: db}
}

// Count returns the catalog size.
func (r *CompetencyRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM competencies`); err != nil {
		return 0, fmt.Errorf("count competencies: %w", err)
	}
	return total, nil
}

// MissingIDs returns the subset of ids that are not in the catalog.
func (r *CompetencyRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, r.db, "competencies", ids)
}
