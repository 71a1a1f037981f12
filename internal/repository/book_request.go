package repository

import (
	"context"
	"slices"
	"time"

	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookRequestRepository defines the interface for loan request data operations
type BookRequestRepository interface {
	Create(ctx context.Context, req *models.BookRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BookRequest, error)
	ListAll(ctx context.Context) ([]*models.BookRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, from []models.LoanStatus, to models.LoanStatus, now time.Time) (*models.BookRequest, models.LoanStatus, error)
	CountByStatus(ctx context.Context, status models.LoanStatus) (int64, error)
}

type bookRequestRepository struct {
	db *gorm.DB
}

// NewBookRequestRepository creates a new loan request repository
func NewBookRequestRepository(db *gorm.DB) BookRequestRepository {
	return &bookRequestRepository{db: db}
}

func (r *bookRequestRepository) Create(ctx context.Context, req *models.BookRequest) error {
	return r.db.WithContext(ctx).Omit("Book").Create(req).Error
}

func (r *bookRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BookRequest, error) {
	var req models.BookRequest
	if err := r.db.WithContext(ctx).Preload("Book").Take(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *bookRequestRepository) ListAll(ctx context.Context) ([]*models.BookRequest, error) {
	var reqs []*models.BookRequest
	err := r.db.WithContext(ctx).
		Preload("Book").
		Order("request_date DESC").
		Find(&reqs).Error
	return reqs, err
}

// SetStatus moves the request to `to` only if it is currently in one of `from`
// and returns the status it held before. The row is locked while the old
// status is read, so concurrent callers see each other's writes.
func (r *bookRequestRepository) SetStatus(ctx context.Context, id uuid.UUID, from []models.LoanStatus, to models.LoanStatus, now time.Time) (*models.BookRequest, models.LoanStatus, error) {
	var (
		req  models.BookRequest
		prev models.LoanStatus
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.BookRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Take(&locked, "id = ?", id).Error; err != nil {
			return err
		}
		prev = locked.Status
		if !slices.Contains(from, prev) {
			return ErrStatusConflict
		}

		res := tx.Model(&models.BookRequest{}).
			Where("id = ? AND status = ?", id, prev).
			Updates(map[string]any{"status": to, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return tx.Preload("Book").Take(&req, "id = ?", id).Error
	})
	if err != nil {
		return nil, prev, err
	}
	return &req, prev, nil
}

func (r *bookRequestRepository) CountByStatus(ctx context.Context, status models.LoanStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.BookRequest{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
