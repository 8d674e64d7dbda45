package main

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/pkg/config"
)

func newTestCLI(t *testing.T) (*commandLine, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	cli := &commandLine{
		cfg:    &config.Config{},
		logger: zap.NewNop(),
		out:    out,
		openDB: func(config.DatabaseConfig) (*sqlx.DB, error) { return sqlx.NewDb(db, "sqlmock"), nil },
	}
	return cli, mock, out
}

func TestRunUnknownCommandPrintsUsage(t *testing.T) {
	cli, _, out := newTestCLI(t)

	err := cli.run([]string{"classroom", "frobnicate"})
	assert.ErrorIs(t, err, errHelp)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunMigrateRequiresDirection(t *testing.T) {
	cli, _, _ := newTestCLI(t)

	assert.ErrorIs(t, cli.run([]string{"classroom", "migrate"}), errHelp)
	assert.ErrorIs(t, cli.run([]string{"classroom", "migrate", "sideways"}), errHelp)
}

func TestRunSeedRequiresFile(t *testing.T) {
	cli, _, _ := newTestCLI(t)

	assert.ErrorIs(t, cli.run([]string{"classroom", "seed"}), errHelp)
}

func TestRunMigrateStatus(t *testing.T) {
	cli, mock, out := newTestCLI(t)
	applied := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, applied_at FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "applied_at"}).AddRow(1, applied))
	mock.ExpectClose()

	require.NoError(t, cli.run([]string{"classroom", "migrate", "status"}))
	assert.Contains(t, out.String(), "001_create_attendance\tapplied 2024-03-01 08:00:00")
	assert.Contains(t, out.String(), "003_seed_competencies\tpending")
	assert.NoError(t, mock.ExpectationsWereMet())
}
