package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/memo-auth-api/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	u, err := model.NewUser(uuid.NewString(), "dup@example.com", "hash", model.RoleCustomer)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.Email, u.Password, "CUSTOMER", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	assert.ErrorIs(t, repo.Create(context.Background(), u), ErrEmailExists)
}

func TestUserRepoFindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.NewString()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE email=?")).
		WithArgs("me@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(id, "me@example.com", "hash", "ADMIN", now, now))

	u, err := repo.FindByEmail(context.Background(), "  Me@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestUserRepoFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepoDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.NewString()), ErrNotFound)
}

func TestTokenRepoReplaceRunsInTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	deviceID := uuid.NewString()
	rt, err := model.NewRefreshToken(uuid.NewString(), "raw", deviceID)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id=?")).
		WithArgs(rt.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(rt.UserID, rt.TokenHash, deviceID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), rt))
}

func TestTokenRepoReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	rt, err := model.NewRefreshToken(uuid.NewString(), "raw", "")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(rt.UserID, rt.TokenHash, nil, sqlmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	assert.Error(t, repo.Replace(context.Background(), rt))
}

func TestTokenRepoFindByUserIDNullDevice(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	userID := uuid.NewString()

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE user_id=?")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "token_hash", "device_id", "created_at"}).
			AddRow(userID, model.HashToken("raw"), nil, time.Now()))

	rt, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, rt.DeviceID)
	assert.True(t, rt.Matches("raw"))
}

func TestDeviceRepoListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDeviceRepo(db)
	userID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM devices WHERE user_id=?")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "logged_in", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), userID, "laptop", true, now, now).
			AddRow(uuid.NewString(), userID, "phone", false, now, now))

	devices, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.True(t, devices[0].LoggedIn)
	assert.Equal(t, "phone", devices[1].Name)
}

func TestMemoRepoUpdateAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMemoRepo(db)
	m, err := model.NewMemo(uuid.NewString(), uuid.NewString(), "title", "body")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE memos SET title=?, content=?, updated_at=? WHERE id=?")).
		WithArgs("title", "body", sqlmock.AnyArg(), m.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM memos WHERE id=?")).
		WithArgs(m.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), m))
	require.NoError(t, repo.Delete(context.Background(), m.ID))
}
