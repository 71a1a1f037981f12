package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendownPost is a longer-form member article published under "Pen Down".
type PendownPost struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	Author      string        `gorm:"type:text;not null" json:"author"`
	Excerpt     *string       `gorm:"type:text" json:"excerpt,omitempty"`
	ImageURL    *string       `gorm:"type:text" json:"image_url,omitempty"`
	Tags        []string      `gorm:"type:text;serializer:json" json:"tags"`
	IsFeatured  bool          `gorm:"not null;default:false" json:"is_featured"`
	Status      ContentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PublishedAt *time.Time    `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (p *PendownPost) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// ModeratedRecord is the common view of a poem or pendown post after a transition.
type ModeratedRecord struct {
	Kind        ContentKind   `json:"kind"`
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	Status      ContentStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at"`
}

// FeedItem is one entry on the public poems page.
type FeedItem struct {
	Kind        ContentKind `json:"kind"`
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Author      string      `json:"author"`
	Excerpt     *string     `json:"excerpt,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	LikesCount  int         `json:"likes_count"`
	PublishedAt *time.Time  `json:"published_at"`
	CreatedAt   time.Time   `json:"created_at"`
}
