package repository

import (
	"context"
	"time"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendownRepository defines the interface for pen-down post data operations
type PendownRepository interface {
	Create(ctx context.Context, post *models.PendownPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PendownPost, error)
	ListApproved(ctx context.Context) ([]*models.PendownPost, error)
	ListAll(ctx context.Context) ([]*models.PendownPost, error)
	SetStatus(ctx context.Context, id uuid.UUID, from []models.ContentStatus, to models.ContentStatus, now time.Time) (*models.PendownPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status models.ContentStatus) (int64, error)
}

type pendownRepository struct {
	db *gorm.DB
}

// NewPendownRepository creates a new pen-down repository
func NewPendownRepository(db *gorm.DB) PendownRepository {
	return &pendownRepository{db: db}
}

func (r *pendownRepository) Create(ctx context.Context, post *models.PendownPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *pendownRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PendownPost, error) {
	var post models.PendownPost
	if err := r.db.WithContext(ctx).Take(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *pendownRepository) ListApproved(ctx context.Context) ([]*models.PendownPost, error) {
	var posts []*models.PendownPost
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ContentStatusApproved).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *pendownRepository) ListAll(ctx context.Context) ([]*models.PendownPost, error) {
	var posts []*models.PendownPost
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *pendownRepository) SetStatus(ctx context.Context, id uuid.UUID, from []models.ContentStatus, to models.ContentStatus, now time.Time) (*models.PendownPost, error) {
	var post models.PendownPost
	if err := setContentStatus(ctx, r.db, &post, id, from, to, now); err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx)
	return &post, nil
}

func (r *pendownRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.PendownPost{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *pendownRepository) CountByStatus(ctx context.Context, status models.ContentStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PendownPost{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
