package repository

import (
	"context"
	"time"

	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// setContentStatus moves a poem or pendown post to `to` if it is currently in
// one of `from`, then reloads it into dest. published_at is stamped in the same
// UPDATE only when it is still null.
func setContentStatus(ctx context.Context, db *gorm.DB, dest any, id uuid.UUID, from []models.ContentStatus, to models.ContentStatus, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     to,
			"updated_at": now,
		}
		if to == models.ContentStatusApproved {
			updates["published_at"] = gorm.Expr("COALESCE(published_at, ?)", now)
		}

		res := tx.Model(dest).Where("id = ? AND status IN ?", id, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Select("id").Take(dest, "id = ?", id).Error; err != nil {
				return err
			}
			return ErrStatusConflict
		}
		return tx.Take(dest, "id = ?", id).Error
	})
}
