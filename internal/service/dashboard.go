package service

import (
	"context"

	"sangrachna/internal/auth"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"

	"golang.org/x/sync/errgroup"
)

// DashboardService computes the operator dashboard counters.
type DashboardService struct {
	books    repository.BookRepository
	events   repository.EventRepository
	poems    repository.PoemRepository
	pendown  repository.PendownRepository
	requests repository.BookRequestRepository
}

func NewDashboardService(
	books repository.BookRepository,
	events repository.EventRepository,
	poems repository.PoemRepository,
	pendown repository.PendownRepository,
	requests repository.BookRequestRepository,
) *DashboardService {
	return &DashboardService{books: books, events: events, poems: poems, pendown: pendown, requests: requests}
}

// Stats runs the five counts concurrently.
func (s *DashboardService) Stats(ctx context.Context, op auth.Operator) (*models.DashboardStats, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Books, err = s.books.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Events, err = s.events.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingPoems, err = s.poems.CountByStatus(gctx, models.ContentStatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingPendown, err = s.pendown.CountByStatus(gctx, models.ContentStatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingBookRequests, err = s.requests.CountByStatus(gctx, models.LoanStatusPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.NewStoreError("load dashboard stats", err)
	}
	return &stats, nil
}
