package service

import (
	"context"
	"errors"
	"fmt"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// SessionManager tracks the single active category of each user.
type SessionManager struct {
	repo *storage.SessionRepository
	now  Clock
}

// SetCategory makes category the active one, overwriting any other.
func (m *SessionManager) SetCategory(ctx context.Context, userID int64, category models.Category) error {
	if err := m.repo.Upsert(ctx, userID, category, m.now()); err != nil {
		return fmt.Errorf("set category of user %d: %w", userID, err)
	}
	return nil
}

// ErrSessionContention is returned when the session of a user keeps
// disappearing between the insert attempt and the read.
var ErrSessionContention = errors.New("session changed concurrently")

// OpenSession starts a session only if the user has none. When a session
// already exists opened is false and current holds its category.
func (m *SessionManager) OpenSession(ctx context.Context, userID int64, category models.Category) (bool, models.Category, error) {
	for attempt := 0; attempt < 2; attempt++ {
		opened, err := m.repo.InsertIfAbsent(ctx, userID, category, m.now())
		if err != nil {
			return false, "", fmt.Errorf("open session of user %d: %w", userID, err)
		}
		if opened {
			return true, category, nil
		}

		current, ok, err := m.GetCategory(ctx, userID)
		if err != nil {
			return false, "", err
		}
		if ok {
			return false, current, nil
		}
		// ended between the insert and the read, retried once
	}
	return false, "", fmt.Errorf("open session of user %d: %w", userID, ErrSessionContention)
}

// GetCategory returns the active category, ok is false when there is none.
func (m *SessionManager) GetCategory(ctx context.Context, userID int64) (models.Category, bool, error) {
	session, err := m.repo.Get(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("get session of user %d: %w", userID, err)
	}
	if session == nil {
		return "", false, nil
	}
	return session.Category, true, nil
}

func (m *SessionManager) ClearCategory(ctx context.Context, userID int64) error {
	if err := m.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear session of user %d: %w", userID, err)
	}
	return nil
}
