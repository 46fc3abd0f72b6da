package service

import (
	"context"
	"fmt"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// OutboundTracker remembers messages to delete when a conversation ends.
type OutboundTracker struct {
	repo *storage.TrackedMessageRepository
	now  Clock
}

func (t *OutboundTracker) Track(ctx context.Context, userID int64, category models.Category, chatID int64, messageID int, role models.TrackedRole) error {
	err := t.repo.Add(ctx, &models.TrackedMessage{
		UserID:    userID,
		Category:  category,
		ChatID:    chatID,
		MessageID: messageID,
		Role:      role,
		CreatedAt: t.now(),
	})
	if err != nil {
		return fmt.Errorf("track message %d/%d: %w", chatID, messageID, err)
	}
	return nil
}

func (t *OutboundTracker) List(ctx context.Context, userID int64) ([]models.TrackedMessage, error) {
	msgs, err := t.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tracked messages of user %d: %w", userID, err)
	}
	return msgs, nil
}
