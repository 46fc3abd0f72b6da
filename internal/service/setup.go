package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"support-relay/internal/config"
	"support-relay/internal/logger"
	"support-relay/internal/storage"
)

// Clock returns the current time. Every service stamps rows in UTC.
type Clock func() time.Time

// Services bundles the store-backed components used by the relay.
type Services struct {
	Users    *UserDirectory
	Bans     *BanGuard
	Sessions *SessionManager
	Inbox    *InboxMapper
	Pending  *PendingActions
	Log      *MessageLog
	Tracker  *OutboundTracker
	Settings *CategorySettings

	conversations *storage.ConversationRepository
}

// New wires every service on top of db.
func New(db *gorm.DB, cfg *config.Config) *Services {
	return NewWithClock(db, cfg, storage.NowUTC)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(db *gorm.DB, cfg *config.Config, now Clock) *Services {
	banDuration := cfg.Relay.BanDuration
	if banDuration <= 0 {
		banDuration = 24 * time.Hour
	}

	return &Services{
		Users:         &UserDirectory{repo: storage.NewUserRepository(db), now: now},
		Bans:          &BanGuard{repo: storage.NewBanRepository(db), now: now, duration: banDuration},
		Sessions:      &SessionManager{repo: storage.NewSessionRepository(db), now: now},
		Inbox:         &InboxMapper{repo: storage.NewInboxRepository(db), now: now},
		Pending:       &PendingActions{repo: storage.NewPendingActionRepository(db), now: now},
		Log:           &MessageLog{repo: storage.NewMessageLogRepository(db), now: now},
		Tracker:       &OutboundTracker{repo: storage.NewTrackedMessageRepository(db), now: now},
		Settings:      &CategorySettings{repo: storage.NewCategorySettingRepository(db), now: now},
		conversations: storage.NewConversationRepository(db),
	}
}

// InitRepositories migrates every table. Failures are logged and the
// remaining tables are still attempted.
func (s *Services) InitRepositories() {
	steps := []struct {
		name    string
		migrate func() error
	}{
		{"User", s.Users.repo.MigrateTable},
		{"Session", s.Sessions.repo.MigrateTable},
		{"Ban", s.Bans.repo.MigrateTable},
		{"InboxMapping", s.Inbox.repo.MigrateTable},
		{"PendingAdminAction", s.Pending.repo.MigrateTable},
		{"MessageLogEntry", s.Log.repo.MigrateTable},
		{"TrackedMessage", s.Tracker.repo.MigrateTable},
		{"CategorySetting", s.Settings.repo.MigrateTable},
	}
	for _, step := range steps {
		if err := step.migrate(); err != nil {
			logger.Warningf("Error migrating %s table: %v", step.name, err)
		}
	}
}

// WipeConversation deletes all per-user conversation state in one
// transaction. The user identity survives.
func (s *Services) WipeConversation(ctx context.Context, userID int64) (storage.WipeResult, error) {
	return s.conversations.WipeUser(ctx, userID)
}
