package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

const msgMemoNotFound = "Memo not found"

type MemoInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Memos groups the memo use cases.  Owners have full access; admins and
// root may read and delete any memo but not edit it.  Everyone else is
// told the memo does not exist.
type Memos struct{ Deps }

func NewMemos(d Deps) *Memos { return &Memos{Deps: d} }

func (uc *Memos) Create(ctx context.Context, user *model.User, in MemoInput) (*model.Memo, error) {
	m, err := model.NewMemo(uuid.NewString(), user.ID, in.Title, in.Content)
	if err != nil {
		return nil, inputErr(err)
	}
	if err := uc.Memos.Create(ctx, m); err != nil {
		return nil, storeErr("Failed to create memo", err)
	}
	return m, nil
}

func (uc *Memos) Get(ctx context.Context, user *model.User, memoID string) (*model.Memo, error) {
	return uc.load(ctx, user, memoID, true)
}

func (uc *Memos) List(ctx context.Context, user *model.User) ([]*model.Memo, error) {
	memos, err := uc.Memos.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, storeErr("Failed to list memos", err)
	}
	return memos, nil
}

func (uc *Memos) Update(ctx context.Context, user *model.User, memoID string, in MemoInput) (*model.Memo, error) {
	m, err := uc.load(ctx, user, memoID, false)
	if err != nil {
		return nil, err
	}
	if err := m.Edit(in.Title, in.Content); err != nil {
		return nil, inputErr(err)
	}
	if err := uc.Memos.Update(ctx, m); err != nil {
		return nil, storeErr("Failed to update memo", err)
	}
	return m, nil
}

func (uc *Memos) Delete(ctx context.Context, user *model.User, memoID string) error {
	m, err := uc.load(ctx, user, memoID, true)
	if err != nil {
		return err
	}
	if err := uc.Memos.Delete(ctx, m.ID); err != nil {
		if isNotFound(err) {
			return apperr.NotFound(msgMemoNotFound)
		}
		return storeErr("Failed to delete memo", err)
	}
	return nil
}

// load fetches a memo the user may access.  elevated lets admins and
// root through for memos they do not own.
func (uc *Memos) load(ctx context.Context, user *model.User, memoID string, elevated bool) (*model.Memo, error) {
	m, err := uc.Memos.FindByID(ctx, memoID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgMemoNotFound)
		}
		return nil, storeErr("Failed to load memo", err)
	}
	if !m.OwnedBy(user.ID) && !(elevated && user.Role.Elevated()) {
		return nil, apperr.NotFound(msgMemoNotFound)
	}
	return m, nil
}
