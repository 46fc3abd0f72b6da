package storage

import (
	"context"

	"support-relay/internal/models"

	"gorm.io/gorm"
)

// WipeResult counts the rows removed per table by WipeUser.
type WipeResult struct {
	Sessions       int64
	InboxMappings  int64
	MessageLog     int64
	Bans           int64
	PendingActions int64
	TrackedMsgs    int64
}

// ConversationRepository removes the per-user conversation state that spans
// several tables.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// WipeUser deletes every per-user row in one transaction. The user identity
// and category settings are kept.
func (r *ConversationRepository) WipeUser(ctx context.Context, userID int64) (WipeResult, error) {
	var res WipeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			where string
			count *int64
		}{
			{&models.Session{}, "user_id = ?", &res.Sessions},
			{&models.InboxMapping{}, "user_id = ?", &res.InboxMappings},
			{&models.MessageLogEntry{}, "user_id = ?", &res.MessageLog},
			{&models.Ban{}, "user_id = ?", &res.Bans},
			{&models.PendingAdminAction{}, "target_user_id = ?", &res.PendingActions},
			{&models.TrackedMessage{}, "user_id = ?", &res.TrackedMsgs},
		}
		for _, step := range steps {
			result := tx.Where(step.where, userID).Delete(step.model)
			if result.Error != nil {
				return result.Error
			}
			*step.count = result.RowsAffected
		}
		return nil
	})
	return res, err
}
