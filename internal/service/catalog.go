package service

import (
	"context"
	"strings"
	"time"

	"sangrachna/internal/auth"
	"sangrachna/internal/cache"
	"sangrachna/internal/middleware"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"
	"sangrachna/internal/validation"

	"github.com/google/uuid"
)

// HomeEventsLimit is the number of events shown on the home page.
const HomeEventsLimit = 3

// BookInput creates or patches a book. Nil fields keep their current value.
type BookInput struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Genre           *string `json:"genre"`
	Description     *string `json:"description"`
	ImageURL        *string `json:"image_url"`
	ISBN            *string `json:"isbn"`
	PublicationYear *int    `json:"publication_year"`
	AvailableCopies *int    `json:"available_copies"`
	TotalCopies     *int    `json:"total_copies"`
	IsFeatured      *bool   `json:"is_featured"`
	IsRecommended   *bool   `json:"is_recommended"`
}

// EventInput creates or patches an event. Date accepts RFC 3339 or YYYY-MM-DD.
type EventInput struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Date             *string `json:"date"`
	Location         *string `json:"location"`
	ImageURL         *string `json:"image_url"`
	RegistrationLink *string `json:"registration_link"`
	Status           *string `json:"status"`
}

// TeamMemberInput creates or patches a team member.
type TeamMemberInput struct {
	Name          *string `json:"name"`
	Position      *string `json:"position"`
	Department    *string `json:"department"`
	Year          *string `json:"year"`
	Email         *string `json:"email"`
	Bio           *string `json:"bio"`
	ImageURL      *string `json:"image_url"`
	LinkedinURL   *string `json:"linkedin_url"`
	OrderPriority *int    `json:"order_priority"`
}

// CatalogService manages the library catalog, events and team roster.
type CatalogService struct {
	books  repository.BookRepository
	events repository.EventRepository
	team   repository.TeamRepository
}

func NewCatalogService(
	books repository.BookRepository,
	events repository.EventRepository,
	team repository.TeamRepository,
) *CatalogService {
	return &CatalogService{books: books, events: events, team: team}
}

// ListBooks returns the catalog newest first, optionally filtered by genre.
func (s *CatalogService) ListBooks(ctx context.Context, genre string) ([]*models.Book, error) {
	books, err := s.books.List(ctx, strings.TrimSpace(genre))
	if err != nil {
		return nil, models.NewStoreError("list books", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Book", id, "load book", err)
	}
	return book, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, op auth.Operator, in BookInput) (*models.Book, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	book := &models.Book{AvailableCopies: 1, TotalCopies: 1}
	if err := applyBook(book, in, true); err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, storeError("Book", book.ID, "create book", err)
	}
	middleware.Logger.InfoContext(ctx, "book created", "id", book.ID, "operator", op.Username())
	return book, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, op auth.Operator, id uuid.UUID, in BookInput) (*models.Book, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Book", id, "load book", err)
	}
	if err := applyBook(book, in, false); err != nil {
		return nil, err
	}
	if err := s.books.Update(ctx, book); err != nil {
		return nil, storeError("Book", id, "update book", err)
	}
	return book, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, op auth.Operator, id uuid.UUID) error {
	if err := requireOperator(op); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return storeError("Book", id, "delete book", err)
	}
	middleware.Logger.InfoContext(ctx, "book deleted", "id", id, "operator", op.Username())
	return nil
}

func applyBook(b *models.Book, in BookInput, create bool) error {
	if create || in.Title != nil {
		v, err := validation.Required("Title", deref(in.Title))
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		b.Title = v
	}
	if create || in.Author != nil {
		v, err := validation.Required("Author", deref(in.Author))
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		b.Author = v
	}
	if in.ImageURL != nil {
		if err := validation.ValidateOptionalURL("image_url", in.ImageURL); err != nil {
			return models.NewValidationError(err.Error())
		}
		b.ImageURL = optionalText(in.ImageURL)
	}
	if in.Genre != nil {
		b.Genre = optionalText(in.Genre)
	}
	if in.Description != nil {
		b.Description = optionalText(in.Description)
	}
	if in.ISBN != nil {
		b.ISBN = optionalText(in.ISBN)
	}
	if in.PublicationYear != nil {
		b.PublicationYear = in.PublicationYear
	}
	if in.TotalCopies != nil {
		b.TotalCopies = *in.TotalCopies
	}
	if in.AvailableCopies != nil {
		b.AvailableCopies = *in.AvailableCopies
	} else if create {
		b.AvailableCopies = b.TotalCopies
	}
	if in.IsFeatured != nil {
		b.IsFeatured = *in.IsFeatured
	}
	if in.IsRecommended != nil {
		b.IsRecommended = *in.IsRecommended
	}
	if b.TotalCopies < 0 || b.AvailableCopies < 0 {
		return models.NewValidationError("Copy counts cannot be negative")
	}
	if b.AvailableCopies > b.TotalCopies {
		return models.NewValidationError("Available copies cannot exceed total copies")
	}
	return nil
}

// ListEvents returns events newest first. limit <= 0 returns all of them.
func (s *CatalogService) ListEvents(ctx context.Context, limit int) ([]*models.Event, error) {
	events, err := s.events.List(ctx, limit)
	if err != nil {
		return nil, models.NewStoreError("list events", err)
	}
	return events, nil
}

func (s *CatalogService) CreateEvent(ctx context.Context, op auth.Operator, in EventInput) (*models.Event, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	creator := op.Username()
	event := &models.Event{CreatedBy: &creator}
	if err := applyEvent(event, in, true); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, storeError("Event", event.ID, "create event", err)
	}
	middleware.Logger.InfoContext(ctx, "event created", "id", event.ID, "operator", op.Username())
	return event, nil
}

func (s *CatalogService) UpdateEvent(ctx context.Context, op auth.Operator, id uuid.UUID, in EventInput) (*models.Event, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Event", id, "load event", err)
	}
	if err := applyEvent(event, in, false); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, storeError("Event", id, "update event", err)
	}
	return event, nil
}

func (s *CatalogService) DeleteEvent(ctx context.Context, op auth.Operator, id uuid.UUID) error {
	if err := requireOperator(op); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return storeError("Event", id, "delete event", err)
	}
	middleware.Logger.InfoContext(ctx, "event deleted", "id", id, "operator", op.Username())
	return nil
}

func applyEvent(e *models.Event, in EventInput, create bool) error {
	if create || in.Title != nil {
		v, err := validation.Required("Title", deref(in.Title))
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		e.Title = v
	}
	if in.Date != nil {
		d, err := parseEventDate(*in.Date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	for _, link := range []struct {
		field string
		value *string
		dest  **string
	}{
		{"image_url", in.ImageURL, &e.ImageURL},
		{"registration_link", in.RegistrationLink, &e.RegistrationLink},
	} {
		if link.value == nil {
			continue
		}
		if err := validation.ValidateOptionalURL(link.field, link.value); err != nil {
			return models.NewValidationError(err.Error())
		}
		*link.dest = optionalText(link.value)
	}
	if in.Description != nil {
		e.Description = optionalText(in.Description)
	}
	if in.Location != nil {
		e.Location = optionalText(in.Location)
	}
	if in.Status != nil {
		e.Status = strings.TrimSpace(*in.Status)
	}
	if e.Status == "" {
		e.Status = models.EventStatusUpcoming
	}
	return nil
}

func parseEventDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := validation.ParseDate(v)
	if err != nil {
		return nil, models.NewValidationError("Event date must be RFC 3339 or YYYY-MM-DD")
	}
	return d, nil
}

// ListTeam returns the roster in display order.
func (s *CatalogService) ListTeam(ctx context.Context) ([]*models.TeamMember, error) {
	members, err := s.team.List(ctx)
	if err != nil {
		return nil, models.NewStoreError("list team", err)
	}
	return members, nil
}

// President returns the member holding the President position.
func (s *CatalogService) President(ctx context.Context) (*models.TeamMember, error) {
	var member models.TeamMember
	err := cache.Aside(ctx, cache.PresidentKey, &member, cache.CatalogTTL, func() error {
		m, err := s.team.GetByPosition(ctx, models.PresidentPosition)
		if err != nil {
			return err
		}
		member = *m
		return nil
	})
	if err != nil {
		return nil, storeError("Team member", models.PresidentPosition, "load president", err)
	}
	return &member, nil
}

func (s *CatalogService) CreateTeamMember(ctx context.Context, op auth.Operator, in TeamMemberInput) (*models.TeamMember, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	member := &models.TeamMember{}
	if err := applyTeamMember(member, in, true); err != nil {
		return nil, err
	}
	if err := s.team.Create(ctx, member); err != nil {
		return nil, storeError("Team member", member.ID, "create team member", err)
	}
	middleware.Logger.InfoContext(ctx, "team member created", "id", member.ID, "operator", op.Username())
	return member, nil
}

func (s *CatalogService) UpdateTeamMember(ctx context.Context, op auth.Operator, id uuid.UUID, in TeamMemberInput) (*models.TeamMember, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	member, err := s.team.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Team member", id, "load team member", err)
	}
	if err := applyTeamMember(member, in, false); err != nil {
		return nil, err
	}
	if err := s.team.Update(ctx, member); err != nil {
		return nil, storeError("Team member", id, "update team member", err)
	}
	return member, nil
}

func (s *CatalogService) DeleteTeamMember(ctx context.Context, op auth.Operator, id uuid.UUID) error {
	if err := requireOperator(op); err != nil {
		return err
	}
	if err := s.team.Delete(ctx, id); err != nil {
		return storeError("Team member", id, "delete team member", err)
	}
	middleware.Logger.InfoContext(ctx, "team member deleted", "id", id, "operator", op.Username())
	return nil
}

func applyTeamMember(m *models.TeamMember, in TeamMemberInput, create bool) error {
	if create || in.Name != nil {
		v, err := validation.Required("Name", deref(in.Name))
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		m.Name = v
	}
	if create || in.Position != nil {
		v, err := validation.Required("Position", deref(in.Position))
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		m.Position = v
	}
	if in.Email != nil {
		email := optionalText(in.Email)
		if email != nil {
			if err := validation.ValidateEmail(*email); err != nil {
				return models.NewValidationError("Email is invalid")
			}
		}
		m.Email = email
	}
	for _, link := range []struct {
		field string
		value *string
		dest  **string
	}{
		{"image_url", in.ImageURL, &m.ImageURL},
		{"linkedin_url", in.LinkedinURL, &m.LinkedinURL},
	} {
		if link.value == nil {
			continue
		}
		if err := validation.ValidateOptionalURL(link.field, link.value); err != nil {
			return models.NewValidationError(err.Error())
		}
		*link.dest = optionalText(link.value)
	}
	if in.Department != nil {
		m.Department = optionalText(in.Department)
	}
	if in.Year != nil {
		m.Year = optionalText(in.Year)
	}
	if in.Bio != nil {
		m.Bio = optionalText(in.Bio)
	}
	if in.OrderPriority != nil {
		m.OrderPriority = in.OrderPriority
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
