package service

import (
	"context"
	"fmt"
	"time"

	"support-relay/internal/logger"
	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// BanStatus is the result of a ban lookup.
type BanStatus int

const (
	BanNone BanStatus = iota
	BanActive
	// BanUnknown means the store could not be read.
	BanUnknown
)

func (s BanStatus) String() string {
	switch s {
	case BanNone:
		return "none"
	case BanActive:
		return "active"
	case BanUnknown:
		return "unknown"
	}
	return fmt.Sprintf("BanStatus(%d)", int(s))
}

// BanCheck carries the status and, when active, the ban itself.
type BanCheck struct {
	Status BanStatus
	Ban    *models.Ban
}

// Blocks reports whether relaying must stop. Unknown does not block.
func (c BanCheck) Blocks() bool {
	return c.Status == BanActive
}

// BanGuard enforces temporary suspensions.
type BanGuard struct {
	repo     *storage.BanRepository
	now      Clock
	duration time.Duration
}

// Duration is the length of a newly imposed ban.
func (g *BanGuard) Duration() time.Duration {
	return g.duration
}

// Check looks up the ban of a user. Expired bans are purged and reported as
// none. Store failures are logged and reported as BanUnknown.
func (g *BanGuard) Check(ctx context.Context, userID int64) BanCheck {
	ban, err := g.repo.GetActive(ctx, userID, g.now())
	if err != nil {
		logger.Warningf("Ban lookup for user %d failed, letting the message through: %v", userID, err)
		return BanCheck{Status: BanUnknown}
	}
	if ban == nil {
		return BanCheck{Status: BanNone}
	}
	return BanCheck{Status: BanActive, Ban: ban}
}

// Impose bans the user from now for the configured duration, replacing any
// earlier ban.
func (g *BanGuard) Impose(ctx context.Context, userID, adminID int64, reason string) (*models.Ban, error) {
	now := g.now()
	ban := &models.Ban{
		UserID:    userID,
		ExpiresAt: now.Add(g.duration),
		Reason:    reason,
		AdminID:   adminID,
		CreatedAt: now,
	}
	if err := g.repo.Upsert(ctx, ban); err != nil {
		return nil, fmt.Errorf("ban user %d: %w", userID, err)
	}
	return ban, nil
}

// Lift removes the ban of a user. Lifting a missing ban is not an error.
func (g *BanGuard) Lift(ctx context.Context, userID int64) error {
	if err := g.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("unban user %d: %w", userID, err)
	}
	return nil
}
