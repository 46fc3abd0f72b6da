package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"support-relay/internal/config"
	"support-relay/internal/models"
	"support-relay/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestServices(t *testing.T) (*Services, *gorm.DB, *fakeClock) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: storage.NowUTC,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{Relay: config.RelayConfig{BanDuration: 24 * time.Hour}}
	svc := NewWithClock(db, cfg, clock.Now)
	svc.InitRepositories()
	return svc, db, clock
}

func TestBanGuardLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestServices(t)

	assert.Equal(t, BanNone, svc.Bans.Check(ctx, 1).Status)

	ban, err := svc.Bans.Impose(ctx, 1, 100, "spam")
	require.NoError(t, err)
	assert.True(t, ban.ExpiresAt.Equal(clock.now.Add(24*time.Hour)))

	check := svc.Bans.Check(ctx, 1)
	assert.Equal(t, BanActive, check.Status)
	assert.True(t, check.Blocks())
	assert.Equal(t, "spam", check.Ban.Reason)

	clock.now = clock.now.Add(24 * time.Hour)
	assert.Equal(t, BanNone, svc.Bans.Check(ctx, 1).Status, "ban expires at its deadline")
	assert.Equal(t, BanNone, svc.Bans.Check(ctx, 1).Status)
}

func TestBanGuardLift(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	_, err := svc.Bans.Impose(ctx, 1, 100, "spam")
	require.NoError(t, err)
	require.NoError(t, svc.Bans.Lift(ctx, 1))
	require.NoError(t, svc.Bans.Lift(ctx, 1))
	assert.Equal(t, BanNone, svc.Bans.Check(ctx, 1).Status)
}

func TestBanGuardFailsOpenWithoutTable(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestServices(t)

	require.NoError(t, db.Migrator().DropTable(&models.Ban{}))

	check := svc.Bans.Check(ctx, 1)
	assert.Equal(t, BanUnknown, check.Status)
	assert.False(t, check.Blocks())
}

func TestOpenSessionRefusesSwitch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	opened, current, err := svc.Sessions.OpenSession(ctx, 1, models.CategoryAdvertise)
	require.NoError(t, err)
	assert.True(t, opened)
	assert.Equal(t, models.CategoryAdvertise, current)

	opened, current, err = svc.Sessions.OpenSession(ctx, 1, models.CategoryReportLink)
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Equal(t, models.CategoryAdvertise, current)

	require.NoError(t, svc.Sessions.ClearCategory(ctx, 1))
	_, ok, err := svc.Sessions.GetCategory(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	opened, _, err = svc.Sessions.OpenSession(ctx, 1, models.CategoryReportLink)
	require.NoError(t, err)
	assert.True(t, opened)
}

// endSessionOnRead deletes the session of user 1 right before every read of
// user_sessions, as a concurrent end-chat would.
func endSessionOnRead(t *testing.T, db *gorm.DB, reads *int) {
	t.Helper()
	err := db.Callback().Query().Before("gorm:query").Register("test:end_session", func(tx *gorm.DB) {
		if tx.Statement.Table != "user_sessions" {
			return
		}
		*reads++
		require.NoError(t, db.Exec("DELETE FROM user_sessions WHERE user_id = ?", 1).Error)
	})
	require.NoError(t, err)
}

func TestOpenSessionRetriesOnceAfterConcurrentEnd(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestServices(t)
	require.NoError(t, svc.Sessions.SetCategory(ctx, 1, models.CategoryAdvertise))

	var reads int
	endSessionOnRead(t, db, &reads)

	opened, current, err := svc.Sessions.OpenSession(ctx, 1, models.CategoryWebSupport)
	require.NoError(t, err)
	assert.True(t, opened)
	assert.Equal(t, models.CategoryWebSupport, current)
	assert.Equal(t, 1, reads)
}

func TestOpenSessionGivesUpUnderContention(t *testing.T) {
	ctx := context.Background()
	svc, db, clock := newTestServices(t)

	var inserts, reads int
	err := db.Callback().Create().Before("gorm:begin_transaction").Register("test:start_session", func(tx *gorm.DB) {
		if tx.Statement.Table != "user_sessions" {
			return
		}
		inserts++
		require.NoError(t, db.Exec("INSERT INTO user_sessions (user_id, category, updated_at) VALUES (?, ?, ?)",
			1, models.CategoryAdvertise, clock.now).Error)
	})
	require.NoError(t, err)
	endSessionOnRead(t, db, &reads)

	opened, _, err := svc.Sessions.OpenSession(ctx, 1, models.CategoryWebSupport)
	assert.ErrorIs(t, err, ErrSessionContention)
	assert.False(t, opened)
	assert.Equal(t, 2, inserts)
	assert.Equal(t, 2, reads)
}

func TestSetCategoryOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	require.NoError(t, svc.Sessions.SetCategory(ctx, 1, models.CategoryWebSupport))
	require.NoError(t, svc.Sessions.SetCategory(ctx, 1, models.CategoryAdvertise))

	category, ok, err := svc.Sessions.GetCategory(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CategoryAdvertise, category)
}

func TestInboxMapperResolve(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	require.NoError(t, svc.Inbox.Record(ctx, 100, 10, 1, models.CategoryWebSupport))
	require.NoError(t, svc.Inbox.Record(ctx, 100, 11, 1, models.CategoryWebSupport))
	require.NoError(t, svc.Inbox.Record(ctx, 100, 10, 2, models.CategoryAdvertise))

	for _, id := range []int{10, 11} {
		userID, category, found, err := svc.Inbox.Resolve(ctx, 100, id)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(1), userID)
		assert.Equal(t, models.CategoryWebSupport, category)
	}

	_, _, found, err := svc.Inbox.Resolve(ctx, 100, 12)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPendingActionsSingleSlot(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestServices(t)

	require.NoError(t, svc.Pending.Set(ctx, 100, models.ActionBanReason, 1, models.CategoryWebSupport, 10))
	var first models.PendingAdminAction
	require.NoError(t, db.Where("admin_id = ?", 100).First(&first).Error)
	require.NoError(t, svc.Pending.Set(ctx, 100, models.ActionBanReason, 2, models.CategoryWebSupport, 20))

	action, err := svc.Pending.Take(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, int64(2), action.TargetUserID)
	assert.NotEqual(t, first.Token, action.Token)

	action, err = svc.Pending.Take(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestMessageLogPlaceholder(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestServices(t)

	require.NoError(t, svc.Log.Append(ctx, &models.MessageLogEntry{
		Direction: models.DirectionUserToAdmin,
		Category:  models.CategoryWebSupport,
		UserID:    1,
		AdminID:   100,
	}))

	entries, err := svc.Log.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.NonTextPlaceholder, entries[0].Text)
	assert.True(t, entries[0].CreatedAt.Equal(clock.now))
}

func TestCategoryBanner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	banner, err := svc.Settings.Banner(ctx, models.CategoryAdvertise)
	require.NoError(t, err)
	assert.Empty(t, banner)

	require.NoError(t, svc.Settings.SetBanner(ctx, models.CategoryAdvertise, "file-1", 100))
	banner, err = svc.Settings.Banner(ctx, models.CategoryAdvertise)
	require.NoError(t, err)
	assert.Equal(t, "file-1", banner)

	require.NoError(t, svc.Settings.ClearBanner(ctx, models.CategoryAdvertise, 100))
	banner, err = svc.Settings.Banner(ctx, models.CategoryAdvertise)
	require.NoError(t, err)
	assert.Empty(t, banner)
}

func TestUserStats(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestServices(t)

	start := clock.now
	clock.now = start.Add(-10 * 24 * time.Hour)
	require.NoError(t, svc.Users.Touch(ctx, Identity{ID: 1, FirstName: "Old"}))
	clock.now = start.Add(-2 * 24 * time.Hour)
	require.NoError(t, svc.Users.Touch(ctx, Identity{ID: 2, FirstName: "Recent"}))
	clock.now = start
	require.NoError(t, svc.Users.Touch(ctx, Identity{ID: 3, FirstName: "New"}))

	stats, err := svc.Users.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Active7d: 2, Today: 1}, stats)

	// touching again refreshes last seen but not the join date
	require.NoError(t, svc.Users.Touch(ctx, Identity{ID: 1, FirstName: "Old"}))
	stats, err = svc.Users.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Active7d: 3, Today: 1}, stats)
}

func TestIdentityFullName(t *testing.T) {
	assert.Equal(t, "Ann Lee", Identity{FirstName: "Ann", LastName: "Lee"}.FullName())
	assert.Equal(t, "Ann", Identity{FirstName: "Ann"}.FullName())
	assert.Equal(t, "", Identity{}.FullName())
}
