package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Poem is a reader-submitted poem shown on the public poems page once approved.
type Poem struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string        `gorm:"type:text;not null" json:"title"`
	Content          string        `gorm:"type:text;not null" json:"content"`
	Author           string        `gorm:"type:text;not null" json:"author"`
	SubmittedByEmail *string       `gorm:"type:text" json:"submitted_by_email,omitempty"`
	Status           ContentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	LikesCount       int           `gorm:"not null;default:0" json:"likes_count"`
	PublishedAt      *time.Time    `json:"published_at"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// BeforeCreate assigns a random identity when none was supplied.
func (p *Poem) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PoemLike is one voter's like on a poem. (PoemID, VoterID) is unique.
type PoemLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PoemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_poem_likes_poem_voter" json:"poem_id"`
	VoterID   string    `gorm:"column:ip_address;type:text;not null;uniqueIndex:idx_poem_likes_poem_voter" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *PoemLike) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Voted bool `json:"user_liked"`
	Count int  `json:"likes_count"`
}
