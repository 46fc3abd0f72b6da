package service

import (
	"context"
	"fmt"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// InboxMapper remembers which user every admin-facing message belongs to, so
// a reply can be routed back.
type InboxMapper struct {
	repo *storage.InboxRepository
	now  Clock
}

// Record maps (adminID, adminMessageID) to the user. Re-recording the same
// pair keeps the first mapping.
func (m *InboxMapper) Record(ctx context.Context, adminID int64, adminMessageID int, userID int64, category models.Category) error {
	err := m.repo.Insert(ctx, &models.InboxMapping{
		AdminID:        adminID,
		AdminMessageID: adminMessageID,
		UserID:         userID,
		Category:       category,
		CreatedAt:      m.now(),
	})
	if err != nil {
		return fmt.Errorf("record inbox mapping %d/%d: %w", adminID, adminMessageID, err)
	}
	return nil
}

// Resolve finds the user behind an admin-facing message.
func (m *InboxMapper) Resolve(ctx context.Context, adminID int64, adminMessageID int) (userID int64, category models.Category, found bool, err error) {
	mapping, err := m.repo.Find(ctx, adminID, adminMessageID)
	if err != nil {
		return 0, "", false, fmt.Errorf("resolve inbox mapping %d/%d: %w", adminID, adminMessageID, err)
	}
	if mapping == nil {
		return 0, "", false, nil
	}
	return mapping.UserID, mapping.Category, true, nil
}
