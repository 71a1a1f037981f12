package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a title in the club library catalog.
type Book struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"type:text;not null" json:"title"`
	Author          string    `gorm:"type:text;not null" json:"author"`
	Genre           *string   `gorm:"type:text;index" json:"genre,omitempty"`
	Description     *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL        *string   `gorm:"type:text" json:"image_url,omitempty"`
	ISBN            *string   `gorm:"column:isbn;type:text" json:"isbn,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	AvailableCopies int       `gorm:"not null" json:"available_copies"`
	TotalCopies     int       `gorm:"not null" json:"total_copies"`
	IsFeatured      bool      `gorm:"not null;default:false" json:"is_featured"`
	IsRecommended   bool      `gorm:"not null;default:false" json:"is_recommended"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookRequest is a member's request to borrow a book.
type BookRequest struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"book_id"`
	Book             *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	UserName         string     `gorm:"type:text;not null" json:"user_name"`
	UserEmail        string     `gorm:"type:text;not null" json:"user_email"`
	MobileNo         *string    `gorm:"type:text" json:"mobile_no,omitempty"`
	AcademicYear     *string    `gorm:"type:text" json:"academic_year,omitempty"`
	RollNo           *string    `gorm:"type:text" json:"roll_no,omitempty"`
	PreferredDueDate *time.Time `gorm:"type:date" json:"preferred_due_date,omitempty"`
	Notes            *string    `gorm:"type:text" json:"notes,omitempty"`
	Status           LoanStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequestDate      time.Time  `gorm:"not null" json:"request_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (r *BookRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RequestDate.IsZero() {
		r.RequestDate = time.Now().UTC()
	}
	return nil
}
