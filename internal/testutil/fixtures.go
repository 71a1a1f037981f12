package testutil

import (
	"testing"
	"time"

	"sangrachna/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreatePoem inserts a poem in the given status.
func CreatePoem(t testing.TB, db *gorm.DB, title, author string, status models.ContentStatus) *models.Poem {
	t.Helper()
	p := &models.Poem{Title: title, Content: "…", Author: author, Status: status}
	if status == models.ContentStatusApproved {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePendown inserts a pen-down post in the given status.
func CreatePendown(t testing.TB, db *gorm.DB, title string, status models.ContentStatus) *models.PendownPost {
	t.Helper()
	p := &models.PendownPost{Title: title, Content: "body", Author: "Editorial", Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateBook inserts a book with the given copy counts.
func CreateBook(t testing.TB, db *gorm.DB, title, author string, available, total int) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Author: author, AvailableCopies: available, TotalCopies: total}
	require.NoError(t, db.Create(b).Error)
	return b
}

// CreateBookRequest inserts a loan request for book in the given status.
func CreateBookRequest(t testing.TB, db *gorm.DB, book *models.Book, status models.LoanStatus) *models.BookRequest {
	t.Helper()
	r := &models.BookRequest{
		BookID:    book.ID,
		UserName:  "Riya Sen",
		UserEmail: "riya@example.edu",
		Status:    status,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}
