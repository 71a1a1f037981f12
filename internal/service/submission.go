package service

import (
	"context"
	"strings"

	"sangrachna/internal/middleware"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"
	"sangrachna/internal/validation"

	"github.com/google/uuid"
)

const (
	maxTitleLen   = 300
	maxAuthorLen  = 120
	maxContentLen = 50000
	maxTags       = 10
	maxTagLen     = 40
)

// PoemSubmission is the public poem form.
type PoemSubmission struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  string  `json:"author"`
	Email   *string `json:"submitted_by_email"`
}

// PendownSubmission is the public pen-down form.
type PendownSubmission struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Author   string   `json:"author"`
	Excerpt  *string  `json:"excerpt"`
	ImageURL *string  `json:"image_url"`
	Tags     []string `json:"tags"`
}

// LoanRequestInput is the public borrow form for one book.
type LoanRequestInput struct {
	BookID           uuid.UUID `json:"-"`
	UserName         string    `json:"user_name"`
	UserEmail        string    `json:"user_email"`
	MobileNo         *string   `json:"mobile_no"`
	AcademicYear     *string   `json:"academic_year"`
	RollNo           *string   `json:"roll_no"`
	PreferredDueDate string    `json:"preferred_due_date"`
	Notes            *string   `json:"notes"`
}

// SubmissionService accepts public submissions. Everything it creates starts pending.
type SubmissionService struct {
	poems    repository.PoemRepository
	pendown  repository.PendownRepository
	books    repository.BookRepository
	requests repository.BookRequestRepository
}

func NewSubmissionService(
	poems repository.PoemRepository,
	pendown repository.PendownRepository,
	books repository.BookRepository,
	requests repository.BookRequestRepository,
) *SubmissionService {
	return &SubmissionService{poems: poems, pendown: pendown, books: books, requests: requests}
}

type authored struct {
	title, content, author string
}

func validateAuthored(title, content, author string) (authored, error) {
	var out authored
	var err error
	if out.title, err = validation.Required("Title", title); err != nil {
		return out, models.NewValidationError(err.Error())
	}
	if out.content, err = validation.Required("Content", content); err != nil {
		return out, models.NewValidationError(err.Error())
	}
	if out.author, err = validation.Required("Author", author); err != nil {
		return out, models.NewValidationError(err.Error())
	}
	for _, check := range []struct {
		field, value string
		limit        int
	}{
		{"Title", out.title, maxTitleLen},
		{"Author", out.author, maxAuthorLen},
		{"Content", out.content, maxContentLen},
	} {
		if err := validation.MaxLen(check.field, check.value, check.limit); err != nil {
			return out, models.NewValidationError(err.Error())
		}
	}
	return out, nil
}

// optionalText trims v and turns blank strings into nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// SubmitPoem stores a new poem for review.
func (s *SubmissionService) SubmitPoem(ctx context.Context, in PoemSubmission) (*models.Poem, error) {
	a, err := validateAuthored(in.Title, in.Content, in.Author)
	if err != nil {
		return nil, err
	}
	email := optionalText(in.Email)
	if email != nil {
		if err := validation.ValidateEmail(*email); err != nil {
			return nil, models.NewValidationError("Submitter email is invalid")
		}
	}

	poem := &models.Poem{
		Title:            a.title,
		Content:          a.content,
		Author:           a.author,
		SubmittedByEmail: email,
		Status:           models.ContentStatusPending,
	}
	if err := s.poems.Create(ctx, poem); err != nil {
		return nil, storeError("Poem", poem.ID, "submit poem", err)
	}
	middleware.Logger.InfoContext(ctx, "poem submitted", "id", poem.ID)
	return poem, nil
}

// SubmitPendown stores a new pen-down post for review.
func (s *SubmissionService) SubmitPendown(ctx context.Context, in PendownSubmission) (*models.PendownPost, error) {
	a, err := validateAuthored(in.Title, in.Content, in.Author)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateOptionalURL("image_url", in.ImageURL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.PendownPost{
		Title:    a.title,
		Content:  a.content,
		Author:   a.author,
		Excerpt:  optionalText(in.Excerpt),
		ImageURL: optionalText(in.ImageURL),
		Tags:     tags,
		Status:   models.ContentStatusPending,
	}
	if err := s.pendown.Create(ctx, post); err != nil {
		return nil, storeError("Pen-down post", post.ID, "submit pen-down post", err)
	}
	middleware.Logger.InfoContext(ctx, "pen-down post submitted", "id", post.ID)
	return post, nil
}

func normalizeTags(in []string) ([]string, error) {
	tags := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		if len([]rune(t)) > maxTagLen {
			return nil, models.NewValidationError("Tag too long")
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return nil, models.NewValidationError("Too many tags")
	}
	return tags, nil
}

// RequestLoan records a borrow request for an existing book.
func (s *SubmissionService) RequestLoan(ctx context.Context, in LoanRequestInput) (*models.BookRequest, error) {
	name, err := validation.Required("Name", in.UserName)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email, err := validation.Required("Email", in.UserEmail)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError("Email is invalid")
	}
	due, err := validation.ParseDate(in.PreferredDueDate)
	if err != nil {
		return nil, models.NewValidationError("Preferred due date must be in YYYY-MM-DD format")
	}

	book, err := s.books.GetByID(ctx, in.BookID)
	if err != nil {
		return nil, storeError("Book", in.BookID, "load book", err)
	}

	req := &models.BookRequest{
		BookID:           book.ID,
		UserName:         name,
		UserEmail:        email,
		MobileNo:         optionalText(in.MobileNo),
		AcademicYear:     optionalText(in.AcademicYear),
		RollNo:           optionalText(in.RollNo),
		PreferredDueDate: due,
		Notes:            optionalText(in.Notes),
		Status:           models.LoanStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, storeError("Book request", req.ID, "submit book request", err)
	}
	req.Book = book
	middleware.Logger.InfoContext(ctx, "book request submitted", "id", req.ID, "book_id", book.ID)
	return req, nil
}
