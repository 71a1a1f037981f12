package repository

import (
	"context"
	"fmt"
	"time"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PoemRepository defines the interface for poem data operations
type PoemRepository interface {
	Create(ctx context.Context, poem *models.Poem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Poem, error)
	ListApproved(ctx context.Context) ([]*models.Poem, error)
	ListAll(ctx context.Context) ([]*models.Poem, error)
	SetStatus(ctx context.Context, id uuid.UUID, from []models.ContentStatus, to models.ContentStatus, now time.Time) (*models.Poem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status models.ContentStatus) (int64, error)
	// ToggleLike flips voterID's like on the poem and returns the new state.
	// The counter update and the vote change happen atomically.
	ToggleLike(ctx context.Context, poemID uuid.UUID, voterID string) (models.LikeResult, error)
}

type poemRepository struct {
	db *gorm.DB
}

// NewPoemRepository creates a new poem repository
func NewPoemRepository(db *gorm.DB) PoemRepository {
	return &poemRepository{db: db}
}

func (r *poemRepository) Create(ctx context.Context, poem *models.Poem) error {
	return r.db.WithContext(ctx).Create(poem).Error
}

func (r *poemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Poem, error) {
	var poem models.Poem
	if err := r.db.WithContext(ctx).Take(&poem, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &poem, nil
}

func (r *poemRepository) ListApproved(ctx context.Context) ([]*models.Poem, error) {
	var poems []*models.Poem
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ContentStatusApproved).
		Order("created_at DESC").
		Find(&poems).Error
	return poems, err
}

func (r *poemRepository) ListAll(ctx context.Context) ([]*models.Poem, error) {
	var poems []*models.Poem
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&poems).Error
	return poems, err
}

func (r *poemRepository) SetStatus(ctx context.Context, id uuid.UUID, from []models.ContentStatus, to models.ContentStatus, now time.Time) (*models.Poem, error) {
	var poem models.Poem
	if err := setContentStatus(ctx, r.db, &poem, id, from, to, now); err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx)
	return &poem, nil
}

func (r *poemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Poem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *poemRepository) CountByStatus(ctx context.Context, status models.ContentStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Poem{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

type toggleRow struct {
	UserLiked  bool `gorm:"column:user_liked"`
	LikesCount int  `gorm:"column:likes_count"`
}

func (r *poemRepository) ToggleLike(ctx context.Context, poemID uuid.UUID, voterID string) (models.LikeResult, error) {
	var (
		result models.LikeResult
		err    error
	)
	if r.db.Dialector.Name() == "postgres" {
		result, err = r.toggleLikeFunc(ctx, poemID, voterID)
	} else {
		result, err = r.toggleLikeTx(ctx, poemID, voterID)
	}
	if err != nil {
		return models.LikeResult{}, err
	}
	cache.InvalidateFeed(ctx)
	return result, nil
}

// toggleLikeFunc runs the toggle_poem_like function installed by the SQL migrations.
func (r *poemRepository) toggleLikeFunc(ctx context.Context, poemID uuid.UUID, voterID string) (models.LikeResult, error) {
	var row toggleRow
	err := r.db.WithContext(ctx).
		Raw("SELECT user_liked, likes_count FROM toggle_poem_like(?, ?)", poemID, voterID).
		Scan(&row).Error
	if err != nil {
		if pgCode(err) == pgNoDataFound {
			return models.LikeResult{}, gorm.ErrRecordNotFound
		}
		return models.LikeResult{}, fmt.Errorf("toggle_poem_like: %w", err)
	}
	return models.LikeResult{Voted: row.UserLiked, Count: row.LikesCount}, nil
}

// toggleLikeTx is the portable equivalent: lock the poem row, flip the vote,
// and recompute the counter from poem_likes in one transaction.
func (r *poemRepository) toggleLikeTx(ctx context.Context, poemID uuid.UUID, voterID string) (models.LikeResult, error) {
	var result models.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var poem models.Poem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Take(&poem, "id = ?", poemID).Error; err != nil {
			return err
		}

		del := tx.Where("poem_id = ? AND ip_address = ?", poemID, voterID).Delete(&models.PoemLike{})
		if del.Error != nil {
			return del.Error
		}
		result.Voted = del.RowsAffected == 0
		if result.Voted {
			if err := tx.Create(&models.PoemLike{PoemID: poemID, VoterID: voterID}).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec(
			"UPDATE poems SET likes_count = (SELECT COUNT(*) FROM poem_likes WHERE poem_likes.poem_id = poems.id), updated_at = ? WHERE id = ?",
			time.Now().UTC(), poemID,
		).Error; err != nil {
			return err
		}

		return tx.Model(&models.Poem{}).
			Select("likes_count").
			Where("id = ?", poemID).
			Scan(&result.Count).Error
	})
	return result, err
}
