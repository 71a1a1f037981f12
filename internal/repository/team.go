package repository

import (
	"context"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamRepository defines the interface for team roster data operations
type TeamRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error)
	List(ctx context.Context) ([]*models.TeamMember, error)
	GetByPosition(ctx context.Context, position string) (*models.TeamMember, error)
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, member *models.TeamMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if err == nil {
		cache.InvalidateTeam(ctx)
	}
	return err
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).Take(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// List orders by order_priority with unranked members last.
func (r *teamRepository) List(ctx context.Context) ([]*models.TeamMember, error) {
	var members []*models.TeamMember
	err := cache.Aside(ctx, cache.TeamListKey, &members, cache.CatalogTTL, func() error {
		return r.db.WithContext(ctx).
			Order("order_priority IS NULL, order_priority ASC, created_at ASC").
			Find(&members).Error
	})
	return members, err
}

func (r *teamRepository) GetByPosition(ctx context.Context, position string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("position = ?", position).
		Order("order_priority IS NULL, order_priority ASC").
		Take(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) Update(ctx context.Context, member *models.TeamMember) error {
	err := r.db.WithContext(ctx).Save(member).Error
	if err == nil {
		cache.InvalidateTeam(ctx)
	}
	return err
}

func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.TeamMember{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateTeam(ctx)
	return nil
}
