package service

import (
	"context"
	"fmt"

	"support-relay/internal/models"
	"support-relay/internal/storage"
)

// CategorySettings holds the banner photo attached to admin replies.
type CategorySettings struct {
	repo *storage.CategorySettingRepository
	now  Clock
}

// SetBanner stores fileID as the banner of category. An empty fileID
// clears it.
func (s *CategorySettings) SetBanner(ctx context.Context, category models.Category, fileID string, adminID int64) error {
	err := s.repo.Upsert(ctx, &models.CategorySetting{
		Category:     category,
		BannerFileID: fileID,
		UpdatedBy:    adminID,
		UpdatedAt:    s.now(),
	})
	if err != nil {
		return fmt.Errorf("set banner of %s: %w", category, err)
	}
	return nil
}

// ClearBanner removes the banner of category.
func (s *CategorySettings) ClearBanner(ctx context.Context, category models.Category, adminID int64) error {
	return s.SetBanner(ctx, category, "", adminID)
}

// Banner returns the banner file id of category, empty when none is set.
func (s *CategorySettings) Banner(ctx context.Context, category models.Category) (string, error) {
	setting, err := s.repo.Get(ctx, category)
	if err != nil {
		return "", fmt.Errorf("get banner of %s: %w", category, err)
	}
	if setting == nil {
		return "", nil
	}
	return setting.BannerFileID, nil
}
