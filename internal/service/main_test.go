package service

import (
	"context"
	"sync"
	"testing"

	"sangrachna/internal/auth"
	"sangrachna/internal/models"
	"sangrachna/internal/notifications"
	"sangrachna/internal/repository"
	"sangrachna/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repos struct {
	db       *gorm.DB
	poems    repository.PoemRepository
	pendown  repository.PendownRepository
	books    repository.BookRepository
	requests repository.BookRequestRepository
	events   repository.EventRepository
	team     repository.TeamRepository
	ops      repository.OperatorRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return repos{
		db:       db,
		poems:    repository.NewPoemRepository(db),
		pendown:  repository.NewPendownRepository(db),
		books:    repository.NewBookRepository(db),
		requests: repository.NewBookRequestRepository(db),
		events:   repository.NewEventRepository(db),
		team:     repository.NewTeamRepository(db),
		ops:      repository.NewOperatorRepository(db),
	}
}

func testOperator(t *testing.T) auth.Operator {
	t.Helper()
	op, err := auth.FromModel(&models.Operator{ID: uuid.New(), Username: "asha", Active: true})
	require.NoError(t, err)
	return op
}

// dispatcherStub records every approval and returns err. onSend runs before
// the context is inspected.
type dispatcherStub struct {
	mu        sync.Mutex
	sent      []notifications.LoanApproval
	ctxErrs   []error
	deadlines []bool
	onSend    func()
	err       error
}

func (d *dispatcherStub) SendLoanApproval(ctx context.Context, msg notifications.LoanApproval) error {
	if d.onSend != nil {
		d.onSend()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	d.ctxErrs = append(d.ctxErrs, ctx.Err())
	_, ok := ctx.Deadline()
	d.deadlines = append(d.deadlines, ok)
	return d.err
}

func (d *dispatcherStub) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type publisherStub struct {
	mu     sync.Mutex
	events []notifications.ModerationEvent
}

func (p *publisherStub) PublishModeration(_ context.Context, ev notifications.ModerationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func ptr[T any](v T) *T { return &v }
