package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// Identity is what the transport tells us about a sender.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// FullName joins first and last name the way Telegram displays them.
func (id Identity) FullName() string {
	return strings.TrimSpace(id.FirstName + " " + id.LastName)
}

// UserDirectory keeps the identity and last activity of everyone who talks
// to the bot.
type UserDirectory struct {
	repo *storage.UserRepository
	now  Clock
}

// Touch upserts the identity and bumps the last seen time.
func (d *UserDirectory) Touch(ctx context.Context, id Identity) error {
	now := d.now()
	user := &models.User{
		UserID:    id.ID,
		Username:  id.Username,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := d.repo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("upsert user %d: %w", id.ID, err)
	}
	return nil
}

// Stats are the counters behind the /users command.
type Stats struct {
	Total    int64
	Active7d int64
	Today    int64
}

// Stats counts all users, those seen in the last seven days, and those first
// seen on the current UTC day.
func (d *UserDirectory) Stats(ctx context.Context) (Stats, error) {
	now := d.now().UTC()
	var s Stats
	var err error

	if s.Total, err = d.repo.CountAll(ctx); err != nil {
		return s, fmt.Errorf("count users: %w", err)
	}
	if s.Active7d, err = d.repo.CountSeenSince(ctx, now.Add(-7*24*time.Hour)); err != nil {
		return s, fmt.Errorf("count active users: %w", err)
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if s.Today, err = d.repo.CountCreatedBetween(ctx, dayStart, dayStart.Add(24*time.Hour)); err != nil {
		return s, fmt.Errorf("count new users: %w", err)
	}
	return s, nil
}
