package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// PendingActions is the single-slot store of multi-step admin operations.
type PendingActions struct {
	repo *storage.PendingActionRepository
	now  Clock
}

// Set puts the admin into AwaitingInput(action). A previous pending action
// of the same admin is replaced.
func (p *PendingActions) Set(ctx context.Context, adminID int64, action models.PendingActionKind, targetUserID int64, category models.Category, refMessageID int) error {
	err := p.repo.Upsert(ctx, &models.PendingAdminAction{
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetUserID,
		Category:     category,
		RefMessageID: refMessageID,
		Token:        uuid.NewString(),
		CreatedAt:    p.now(),
	})
	if err != nil {
		return fmt.Errorf("set pending action of admin %d: %w", adminID, err)
	}
	return nil
}

// Take consumes the pending action of the admin. It returns nil when the
// admin is idle or another caller consumed the action first.
func (p *PendingActions) Take(ctx context.Context, adminID int64) (*models.PendingAdminAction, error) {
	action, err := p.repo.Take(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("take pending action of admin %d: %w", adminID, err)
	}
	return action, nil
}
