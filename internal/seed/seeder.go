package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sangrachna/internal/middleware"
	"sangrachna/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var genres = []string{"Poetry", "Fiction", "Essays", "Drama", "Translation", "Memoir"}

var tags = []string{"essay", "memoir", "translation", "review", "bengali", "hindi", "craft"}

// Seeder writes fixture and generated rows.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder returns a Seeder. A zero seed uses the clock, so runs differ.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, faker: gofakeit.New(seed)}
}

// ClearAll removes catalog and content rows. Operators are kept.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, m := range []any{
		&models.PoemLike{},
		&models.BookRequest{},
		&models.Poem{},
		&models.PendownPost{},
		&models.Book{},
		&models.Event{},
		&models.TeamMember{},
	} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	middleware.Logger.Info("seed: cleared content tables")
	return nil
}

// ApplyFixture inserts everything in f inside one transaction.
func (s *Seeder) ApplyFixture(ctx context.Context, f *Fixture) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range f.Books {
			book := &models.Book{
				Title:           strings.TrimSpace(b.Title),
				Author:          strings.TrimSpace(b.Author),
				Genre:           optional(b.Genre),
				Description:     optional(b.Description),
				ISBN:            optional(b.ISBN),
				AvailableCopies: b.Copies,
				TotalCopies:     b.Copies,
				IsFeatured:      b.Featured,
			}
			if b.Year > 0 {
				year := b.Year
				book.PublicationYear = &year
			}
			if err := tx.Create(book).Error; err != nil {
				return fmt.Errorf("insert book %q: %w", b.Title, err)
			}
		}

		for _, e := range f.Events {
			event := &models.Event{
				Title:       strings.TrimSpace(e.Title),
				Description: optional(e.Description),
				Location:    optional(e.Location),
			}
			if e.Date != "" {
				d, _ := time.Parse(time.DateOnly, e.Date)
				event.Date = &d
			}
			if err := tx.Create(event).Error; err != nil {
				return fmt.Errorf("insert event %q: %w", e.Title, err)
			}
		}

		for _, m := range f.Team {
			priority := m.Priority
			member := &models.TeamMember{
				Name:          strings.TrimSpace(m.Name),
				Position:      strings.TrimSpace(m.Position),
				Department:    optional(m.Department),
				Year:          optional(m.Year),
				OrderPriority: &priority,
			}
			if err := tx.Create(member).Error; err != nil {
				return fmt.Errorf("insert team member %q: %w", m.Name, err)
			}
		}

		now := time.Now().UTC()
		for _, p := range f.Poems {
			status := models.ContentStatus(p.Status)
			if status == "" {
				status = models.ContentStatusApproved
			}
			poem := &models.Poem{
				Title:   strings.TrimSpace(p.Title),
				Author:  strings.TrimSpace(p.Author),
				Content: p.Content,
				Status:  status,
			}
			if status == models.ContentStatusApproved {
				poem.PublishedAt = &now
			}
			if err := tx.Create(poem).Error; err != nil {
				return fmt.Errorf("insert poem %q: %w", p.Title, err)
			}
		}

		middleware.Logger.Info("seed: fixture applied",
			"books", len(f.Books), "events", len(f.Events), "team", len(f.Team), "poems", len(f.Poems))
		return nil
	})
}

// Counts reports how many rows SeedFake created per table.
type Counts struct {
	Books    int
	Requests int
	Poems    int
	Pendown  int
	Events   int
}

// SeedFake generates n books, poems and pen-down posts in mixed states, plus
// a pending loan request for every other book and n/2 events.
func (s *Seeder) SeedFake(ctx context.Context, n int) (Counts, error) {
	var counts Counts
	if n <= 0 {
		return counts, nil
	}
	f := s.faker
	db := s.db.WithContext(ctx)
	statuses := []models.ContentStatus{models.ContentStatusPending, models.ContentStatusApproved, models.ContentStatusRejected}

	books := make([]*models.Book, 0, n)
	for range n {
		copies := f.Number(1, 5)
		genre := f.RandomString(genres)
		books = append(books, &models.Book{
			Title:           strings.TrimSuffix(f.Sentence(3), "."),
			Author:          f.Name(),
			Genre:           &genre,
			AvailableCopies: copies,
			TotalCopies:     copies,
			IsRecommended:   f.Bool(),
		})
	}
	if err := db.Create(&books).Error; err != nil {
		return counts, fmt.Errorf("insert fake books: %w", err)
	}
	counts.Books = len(books)

	var requests []*models.BookRequest
	for i, b := range books {
		if i%2 != 0 {
			continue
		}
		requests = append(requests, &models.BookRequest{
			BookID:    b.ID,
			UserName:  f.Name(),
			UserEmail: f.Email(),
			Status:    models.LoanStatusPending,
		})
	}
	if len(requests) > 0 {
		if err := db.Create(&requests).Error; err != nil {
			return counts, fmt.Errorf("insert fake requests: %w", err)
		}
	}
	counts.Requests = len(requests)

	since := time.Now().AddDate(0, -3, 0)
	poems := make([]*models.Poem, 0, n)
	posts := make([]*models.PendownPost, 0, n)
	for i := range n {
		status := statuses[i%len(statuses)]
		created := f.DateRange(since, time.Now()).UTC()

		poem := &models.Poem{
			Title:     strings.TrimSuffix(f.Sentence(4), "."),
			Content:   f.Paragraph(3, 4, 8, "\n"),
			Author:    f.Name(),
			Status:    status,
			CreatedAt: created,
		}
		post := &models.PendownPost{
			Title:     strings.TrimSuffix(f.Sentence(6), "."),
			Content:   f.Paragraph(4, 5, 12, "\n\n"),
			Author:    f.Name(),
			Tags:      []string{f.RandomString(tags)},
			Status:    status,
			CreatedAt: created,
		}
		if status == models.ContentStatusApproved {
			published := created.Add(time.Hour)
			poem.PublishedAt = &published
			post.PublishedAt = &published
		}
		poems = append(poems, poem)
		posts = append(posts, post)
	}
	if err := db.Create(&poems).Error; err != nil {
		return counts, fmt.Errorf("insert fake poems: %w", err)
	}
	if err := db.Create(&posts).Error; err != nil {
		return counts, fmt.Errorf("insert fake pendown posts: %w", err)
	}
	counts.Poems, counts.Pendown = len(poems), len(posts)

	events := make([]*models.Event, 0, n/2)
	for range n / 2 {
		date := f.DateRange(time.Now().AddDate(0, -1, 0), time.Now().AddDate(0, 2, 0)).UTC()
		location := f.City()
		events = append(events, &models.Event{
			Title:    strings.TrimSuffix(f.Sentence(3), "."),
			Date:     &date,
			Location: &location,
		})
	}
	if len(events) > 0 {
		if err := db.Create(&events).Error; err != nil {
			return counts, fmt.Errorf("insert fake events: %w", err)
		}
	}
	counts.Events = len(events)

	middleware.Logger.Info("seed: fake data generated",
		"books", counts.Books, "requests", counts.Requests, "poems", counts.Poems,
		"pendown", counts.Pendown, "events", counts.Events)
	return counts, nil
}
