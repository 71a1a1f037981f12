package repository

import (
	"context"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookRepository defines the interface for catalog data operations
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, genre string) ([]*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// AdjustAvailable moves available_copies by delta, staying within [0, total_copies].
	// It reports false when the bound prevented the change.
	AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) (bool, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	err := r.db.WithContext(ctx).Create(book).Error
	if err == nil {
		cache.InvalidateBooks(ctx)
	}
	return err
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Take(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, genre string) ([]*models.Book, error) {
	var books []*models.Book
	err := cache.Aside(ctx, cache.BooksListKey(genre), &books, cache.CatalogTTL, func() error {
		q := r.db.WithContext(ctx).Order("created_at DESC")
		if genre != "" {
			q = q.Where("genre = ?", genre)
		}
		return q.Find(&books).Error
	})
	return books, err
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	err := r.db.WithContext(ctx).Save(book).Error
	if err == nil {
		cache.InvalidateBooks(ctx)
	}
	return err
}

func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateBooks(ctx)
	return nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&n).Error
	return n, err
}

func (r *bookRepository) AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("available_copies + ? >= 0", delta)
	} else {
		q = q.Where("available_copies + ? <= total_copies", delta)
	}
	res := q.Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	cache.InvalidateBooks(ctx)
	return true, nil
}
