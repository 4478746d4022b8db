package model

import (
	"strings"
	"time"
)

const (
	maxMemoTitleLen   = 200
	maxMemoContentLen = 10000
)

// Memo is a short note owned by a user.
type Memo struct {
	ID        string    `json:"id"`         // memos.id
	UserID    string    `json:"user_id"`    // memos.user_id
	Title     string    `json:"title"`      // memos.title
	Content   string    `json:"content"`    // memos.content
	CreatedAt time.Time `json:"created_at"` // memos.created_at
	UpdatedAt time.Time `json:"updated_at"` // memos.updated_at
}

// NewMemo validates and builds a memo.
func NewMemo(id, userID, title, content string) (*Memo, error) {
	if !isUUID(id) {
		return nil, invalid("id", "must be a UUID")
	}
	if !isUUID(userID) {
		return nil, invalid("user_id", "must be a UUID")
	}
	m := &Memo{ID: id, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := m.Edit(title, content); err != nil {
		return nil, err
	}
	return m, nil
}

// Edit replaces title and content after validating them.
func (m *Memo) Edit(title, content string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title", "is required")
	}
	if len(title) > maxMemoTitleLen {
		return invalid("title", "is too long")
	}
	if len(content) > maxMemoContentLen {
		return invalid("content", "is too long")
	}
	m.Title = title
	m.Content = content
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// OwnedBy reports whether the memo belongs to userID.
func (m *Memo) OwnedBy(userID string) bool { return m.UserID == userID }
