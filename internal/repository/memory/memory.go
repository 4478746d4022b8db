// Package memory provides in-process implementations of the stores in
// package repository.  They back APP_STORE=memory and the use case
// tests.  Every method copies values in and out so callers never share
// state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/repository"
)

// UserRepo is an in-memory user store with a unique email index.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[string]model.User{}, byEmail: map[string]string{}}
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepo) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if owner, taken := r.byEmail[u.Email]; taken && owner != u.ID {
		return repository.ErrEmailExists
	}
	delete(r.byEmail, old.Email)
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

// TokenRepo keeps at most one session per user, mirroring the unique
// key on refresh_tokens.user_id.
type TokenRepo struct {
	mu     sync.RWMutex
	byUser map[string]model.RefreshToken
}

func NewTokenRepo() *TokenRepo { return &TokenRepo{byUser: map[string]model.RefreshToken{}} }

var _ repository.TokenStore = (*TokenRepo)(nil)

func (r *TokenRepo) Replace(_ context.Context, rt *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[rt.UserID] = *rt
	return nil
}

func (r *TokenRepo) FindByUserID(_ context.Context, userID string) (*model.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}

func (r *TokenRepo) DeleteByHash(_ context.Context, userID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.byUser[userID]; ok && rt.TokenHash == tokenHash {
		delete(r.byUser, userID)
	}
	return nil
}

func (r *TokenRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *TokenRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byUser))
	r.byUser = map[string]model.RefreshToken{}
	return n, nil
}

// DeviceRepo is an in-memory device store.
type DeviceRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Device
}

func NewDeviceRepo() *DeviceRepo { return &DeviceRepo{byID: map[string]model.Device{}} }

func (r *DeviceRepo) Create(_ context.Context, d *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = *d
	return nil
}

func (r *DeviceRepo) FindByID(_ context.Context, id string) (*model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *DeviceRepo) ListByUser(_ context.Context, userID string) ([]*model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	devices := []*model.Device{}
	for _, d := range r.byID {
		if d.UserID == userID {
			d := d
			devices = append(devices, &d)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].CreatedAt.Equal(devices[j].CreatedAt) {
			return devices[i].ID < devices[j].ID
		}
		return devices[i].CreatedAt.Before(devices[j].CreatedAt)
	})
	return devices, nil
}

func (r *DeviceRepo) Update(_ context.Context, d *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[d.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[d.ID] = *d
	return nil
}

func (r *DeviceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *DeviceRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.byID {
		if d.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// MemoRepo is an in-memory memo store.
type MemoRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Memo
}

func NewMemoRepo() *MemoRepo { return &MemoRepo{byID: map[string]model.Memo{}} }

func (r *MemoRepo) Create(_ context.Context, m *model.Memo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = *m
	return nil
}

func (r *MemoRepo) FindByID(_ context.Context, id string) (*model.Memo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

// ListByUser returns newest first, like the MySQL store.
func (r *MemoRepo) ListByUser(_ context.Context, userID string) ([]*model.Memo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	memos := []*model.Memo{}
	for _, m := range r.byID {
		if m.UserID == userID {
			m := m
			memos = append(memos, &m)
		}
	}
	sort.Slice(memos, func(i, j int) bool {
		if memos[i].CreatedAt.Equal(memos[j].CreatedAt) {
			return memos[i].ID < memos[j].ID
		}
		return memos[i].CreatedAt.After(memos[j].CreatedAt)
	})
	return memos, nil
}

func (r *MemoRepo) Update(_ context.Context, m *model.Memo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[m.ID] = *m
	return nil
}

func (r *MemoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.byID {
		if m.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}
