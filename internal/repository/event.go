package repository

import (
	"context"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// List returns events newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if err == nil {
		cache.InvalidateEvents(ctx)
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Take(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, limit int) ([]*models.Event, error) {
	if limit < 0 {
		limit = 0
	}
	var events []*models.Event
	err := cache.Aside(ctx, cache.EventsListKey(limit), &events, cache.CatalogTTL, func() error {
		q := r.db.WithContext(ctx).Order(`"date" IS NULL, "date" DESC, created_at DESC`)
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&events).Error
	})
	return events, err
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Save(event).Error
	if err == nil {
		cache.InvalidateEvents(ctx)
	}
	return err
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateEvents(ctx)
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error
	return n, err
}
