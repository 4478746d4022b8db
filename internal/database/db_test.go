package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDSN(t *testing.T) {
	o := Options{User: "app", Password: "pw", Host: "db", Port: "3306", Name: "memos"}
	assert.Equal(t, "app:pw@tcp(db:3306)/memos?charset=utf8mb4&parseTime=true&loc=UTC", o.DSN())

	o.Password = ""
	assert.Equal(t, "app@tcp(db:3306)/memos?charset=utf8mb4&parseTime=true&loc=UTC", o.DSN())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("denied"))
	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "schema statement 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
