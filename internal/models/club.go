package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventStatusUpcoming is the default status for new events.
const EventStatusUpcoming = "upcoming"

// PresidentPosition is the team position shown on the home page.
const PresidentPosition = "President"

// Event is a club event listed on the events page.
type Event struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"type:text;not null" json:"title"`
	Description      *string    `gorm:"type:text" json:"description,omitempty"`
	Date             *time.Time `gorm:"index" json:"date,omitempty"`
	Location         *string    `gorm:"type:text" json:"location,omitempty"`
	ImageURL         *string    `gorm:"type:text" json:"image_url,omitempty"`
	RegistrationLink *string    `gorm:"type:text" json:"registration_link,omitempty"`
	Status           string     `gorm:"type:varchar(40);not null;default:'upcoming'" json:"status"`
	CreatedBy        *string    `gorm:"type:text" json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EventStatusUpcoming
	}
	return nil
}

// TeamMember is a member of the club's core team.
type TeamMember struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Position      string    `gorm:"type:text;not null;index" json:"position"`
	Department    *string   `gorm:"type:text" json:"department,omitempty"`
	Year          *string   `gorm:"type:text" json:"year,omitempty"`
	Email         *string   `gorm:"type:text" json:"email,omitempty"`
	Bio           *string   `gorm:"type:text" json:"bio,omitempty"`
	ImageURL      *string   `gorm:"type:text" json:"image_url,omitempty"`
	LinkedinURL   *string   `gorm:"type:text" json:"linkedin_url,omitempty"`
	OrderPriority *int      `json:"order_priority,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (m *TeamMember) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DashboardStats are the counts shown on the operator dashboard.
type DashboardStats struct {
	Books               int64 `json:"books"`
	PendingPendown      int64 `json:"pending_pendown"`
	PendingPoems        int64 `json:"pending_poems"`
	Events              int64 `json:"events"`
	PendingBookRequests int64 `json:"pending_book_requests"`
}
