package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/memo-auth-api/internal/model"
)

// TokenStore is the durable half of the SessionStore.  Both the MySQL
// TokenRepo and the in-memory store satisfy it.
type TokenStore interface {
	// Replace makes rt the only session of rt.UserID.
	Replace(ctx context.Context, rt *model.RefreshToken) error
	FindByUserID(ctx context.Context, userID string) (*model.RefreshToken, error)
	// DeleteByHash removes the session of userID only if its digest matches.
	DeleteByHash(ctx context.Context, userID, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// TokenRepo persists refresh token digests in `refresh_tokens`.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Replace deletes any session of the user and inserts rt in one
// transaction, so a reader never sees two sessions for the same user.
func (r *TokenRepo) Replace(ctx context.Context, rt *model.RefreshToken) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", rt.UserID); err != nil {
		return fmt.Errorf("delete previous session: %w", err)
	}
	device := sql.NullString{String: rt.DeviceID, Valid: rt.DeviceID != ""}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, device_id, created_at) VALUES (?,?,?,?)",
		rt.UserID, rt.TokenHash, device, rt.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FindByUserID returns the session of userID or ErrNotFound.
func (r *TokenRepo) FindByUserID(ctx context.Context, userID string) (*model.RefreshToken, error) {
	var (
		rt     model.RefreshToken
		device sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, token_hash, device_id, created_at FROM refresh_tokens WHERE user_id=? LIMIT 1",
		userID).Scan(&rt.UserID, &rt.TokenHash, &device, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	rt.DeviceID = device.String
	return &rt, nil
}

// DeleteByHash removes one session by identity.  Deleting an already
// removed session is not an error.
func (r *TokenRepo) DeleteByHash(ctx context.Context, userID, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=? AND token_hash=?", userID, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session of userID.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// DeleteAll truncates the session table and reports how many rows went.
func (r *TokenRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens")
	if err != nil {
		return 0, fmt.Errorf("delete all sessions: %w", err)
	}
	return res.RowsAffected()
}
