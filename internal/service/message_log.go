package service

import (
	"context"
	"fmt"
	"strings"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// MessageLog is the append-only record of relayed messages.
type MessageLog struct {
	repo *storage.MessageLogRepository
	now  Clock
}

// Append stores the entry. Empty text is replaced by the non-text
// placeholder and CreatedAt is stamped when unset.
func (l *MessageLog) Append(ctx context.Context, entry *models.MessageLogEntry) error {
	if strings.TrimSpace(entry.Text) == "" {
		entry.Text = models.NonTextPlaceholder
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now()
	}
	if err := l.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s log of user %d: %w", entry.Direction, entry.UserID, err)
	}
	return nil
}

// History returns the log of a user ordered by creation time then id.
func (l *MessageLog) History(ctx context.Context, userID int64) ([]models.MessageLogEntry, error) {
	entries, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list log of user %d: %w", userID, err)
	}
	return entries, nil
}
