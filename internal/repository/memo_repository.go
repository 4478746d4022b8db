package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/memo-auth-api/internal/model"
)

const memoColumns = "id, user_id, title, content, created_at, updated_at"

// MemoRepo persists memos in the `memos` table.
type MemoRepo struct{ DB *sql.DB }

func NewMemoRepo(db *sql.DB) *MemoRepo { return &MemoRepo{DB: db} }

func (r *MemoRepo) Create(ctx context.Context, m *model.Memo) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO memos ("+memoColumns+") VALUES (?,?,?,?,?,?)",
		m.ID, m.UserID, m.Title, m.Content, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert memo: %w", err)
	}
	return nil
}

func (r *MemoRepo) FindByID(ctx context.Context, id string) (*model.Memo, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id=? LIMIT 1", id)
	return scanMemo(row)
}

// ListByUser returns the memos of userID, newest first.
func (r *MemoRepo) ListByUser(ctx context.Context, userID string) ([]*model.Memo, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE user_id=? ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	defer rows.Close()

	memos := []*model.Memo{}
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, m)
	}
	return memos, rows.Err()
}

func (r *MemoRepo) Update(ctx context.Context, m *model.Memo) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE memos SET title=?, content=?, updated_at=? WHERE id=?",
		m.Title, m.Content, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("update memo: %w", err)
	}
	return nil
}

func (r *MemoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM memos WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}
	return requireAffected(res)
}

func (r *MemoRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM memos WHERE user_id=?", userID); err != nil {
		return fmt.Errorf("delete user memos: %w", err)
	}
	return nil
}

func scanMemo(s scanner) (*model.Memo, error) {
	var m model.Memo
	if err := s.Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan memo: %w", err)
	}
	return &m, nil
}
