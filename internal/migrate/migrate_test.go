package migrate

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AppliesSchemaOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectAppliedVersion)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(insertVersion)).
		WithArgs(SchemaVersion).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := Run(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 0, result.FromVersion)
	assert.Equal(t, SchemaVersion, result.ToVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SkipsWhenCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectAppliedVersion)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(SchemaVersion))

	result, err := Run(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectAppliedVersion)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	_, err = Run(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_DeclaresCoreTables(t *testing.T) {
	for _, table := range []string{"users", "clients", "posts", "templates", "messages", "notifications", "agencies", "audit_events"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
