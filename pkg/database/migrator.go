package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const migrationsTable = "schema_migrations"

// Migration is one versioned schema change.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	IsApplied bool
	AppliedAt *time.Time
}

// Migrator applies embedded migrations and records them in schema_migrations.
type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
	logger     *zap.Logger
}

// NewMigrator constructs a migrator for the given migrations.
func NewMigrator(db *sqlx.DB, migrations []Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return &Migrator{db: db, migrations: sorted, logger: logger}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`, migrationsTable)
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	rows := []struct {
		Version   int       `db:"version"`
		AppliedAt time.Time `db:"applied_at"`
	}{}
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", migrationsTable)
	if err := m.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	result := make(map[int]time.Time, len(rows))
	for _, row := range rows {
		result[row.Version] = row.AppliedAt
	}
	return result, nil
}

// Up applies every pending migration, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		if err := m.run(ctx, mig.UpSQL, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", migrationsTable), mig.Version, mig.Name)
			return err
		}); err != nil {
			return count, fmt.Errorf("apply migration %03d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("migration applied", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		count++
	}
	return count, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if _, ok := done[mig.Version]; !ok {
			continue
		}
		if err := m.run(ctx, mig.DownSQL, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version = $1", migrationsTable), mig.Version)
			return err
		}); err != nil {
			return fmt.Errorf("rollback migration %03d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("migration rolled back", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		return nil
	}
	return nil
}

// Status reports every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		if at, ok := done[result[i].Version]; ok {
			appliedAt := at
			result[i].IsApplied = true
			result[i].AppliedAt = &appliedAt
		}
	}
	return result, nil
}

func (m *Migrator) run(ctx context.Context, statement string, record func(*sqlx.Tx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, statement); err != nil {
		return err
	}
	if err := record(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	commit = true
	return nil
}
