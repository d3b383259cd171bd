package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRunMigrationsAppliesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_tickets.sql", "CREATE TABLE tickets (id BIGINT)")
	writeMigration(t, dir, "001_accounts.sql", "CREATE TABLE accounts (id BIGINT)")
	writeMigration(t, dir, "README.md", "not sql")

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE accounts").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE tickets").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, RunMigrations(context.Background(), mock, dir, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_accounts.sql", "CREATE TABLE accounts (id BIGINT)")
	writeMigration(t, dir, "002_tickets.sql", "CREATE TABLE tickets (id BIGINT)")

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE accounts").WillReturnError(errors.New("syntax error"))

	err = RunMigrations(context.Background(), mock, dir, zap.NewNop())
	assert.ErrorContains(t, err, "001_accounts.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsWithoutPoolIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "missing", zap.NewNop()))
}
