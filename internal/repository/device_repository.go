package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/memo-auth-api/internal/model"
)

const deviceColumns = "id, user_id, name, logged_in, created_at, updated_at"

// DeviceRepo persists devices in the `devices` table.
type DeviceRepo struct{ DB *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{DB: db} }

func (r *DeviceRepo) Create(ctx context.Context, d *model.Device) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO devices ("+deviceColumns+") VALUES (?,?,?,?,?,?)",
		d.ID, d.UserID, d.Name, d.LoggedIn, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

func (r *DeviceRepo) FindByID(ctx context.Context, id string) (*model.Device, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id=? LIMIT 1", id)
	return scanDevice(row)
}

// ListByUser returns the devices of userID, oldest first.
func (r *DeviceRepo) ListByUser(ctx context.Context, userID string) ([]*model.Device, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id=? ORDER BY created_at, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices := []*model.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Update writes name and session flag.
func (r *DeviceRepo) Update(ctx context.Context, d *model.Device) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET name=?, logged_in=?, updated_at=? WHERE id=?",
		d.Name, d.LoggedIn, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM devices WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	return requireAffected(res)
}

// DeleteByUser removes every device of userID.
func (r *DeviceRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM devices WHERE user_id=?", userID); err != nil {
		return fmt.Errorf("delete user devices: %w", err)
	}
	return nil
}

func scanDevice(s scanner) (*model.Device, error) {
	var d model.Device
	if err := s.Scan(&d.ID, &d.UserID, &d.Name, &d.LoggedIn, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}
	return &d, nil
}
