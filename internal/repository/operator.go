package repository

import (
	"context"
	"time"

	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatorRepository defines the interface for operator account data operations
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	List(ctx context.Context) ([]*models.Operator, error)
	SetActive(ctx context.Context, username string, active bool) error
	SetPassword(ctx context.Context, username, hash string) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type operatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository creates a new operator repository
func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, op *models.Operator) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *operatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.WithContext(ctx).Take(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.WithContext(ctx).Take(&op, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepository) List(ctx context.Context) ([]*models.Operator, error) {
	var ops []*models.Operator
	err := r.db.WithContext(ctx).Order("username ASC").Find(&ops).Error
	return ops, err
}

func (r *operatorRepository) SetActive(ctx context.Context, username string, active bool) error {
	return r.updateByUsername(ctx, username, "active", active)
}

func (r *operatorRepository) SetPassword(ctx context.Context, username, hash string) error {
	return r.updateByUsername(ctx, username, "password_hash", hash)
}

func (r *operatorRepository) updateByUsername(ctx context.Context, username, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.Operator{}).Where("username = ?", username).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *operatorRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).Update("last_login_at", at).Error
}
