package service

import (
	"context"
	"errors"
	"time"

	"sangrachna/internal/auth"
	"sangrachna/internal/middleware"
	"sangrachna/internal/models"
	"sangrachna/internal/notifications"
	"sangrachna/internal/observability"
	"sangrachna/internal/repository"
	"sangrachna/internal/workflow"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const defaultNotifyTimeout = 10 * time.Second

var (
	// ErrNoCopiesAvailable is reported by the catalog hook when a book has no copy left to lend.
	ErrNoCopiesAvailable = errors.New("no copies available")
	// ErrAllCopiesShelved is reported when a return would exceed total_copies.
	ErrAllCopiesShelved = errors.New("all copies are already on the shelf")
)

// InventoryHook keeps catalog copy counts in step with loans. A copy is out
// while its request is approved.
type InventoryHook interface {
	OnApprove(ctx context.Context, req *models.BookRequest) error
	OnReturn(ctx context.Context, req *models.BookRequest) error
}

// CatalogInventory adjusts books.available_copies within [0, total_copies].
type CatalogInventory struct {
	books repository.BookRepository
}

func NewCatalogInventory(books repository.BookRepository) *CatalogInventory {
	return &CatalogInventory{books: books}
}

func (h *CatalogInventory) OnApprove(ctx context.Context, req *models.BookRequest) error {
	ok, err := h.books.AdjustAvailable(ctx, req.BookID, -1)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoCopiesAvailable
	}
	return nil
}

func (h *CatalogInventory) OnReturn(ctx context.Context, req *models.BookRequest) error {
	ok, err := h.books.AdjustAvailable(ctx, req.BookID, 1)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAllCopiesShelved
	}
	return nil
}

// TransitionOutcome is the result of a committed loan transition. The status
// change stands even when NotificationErr or InventoryErr is set.
type TransitionOutcome struct {
	Request          *models.BookRequest
	NotificationSent bool
	NotificationErr  error
	InventoryErr     error
}

// Partial reports whether a side effect failed after the status committed.
func (o *TransitionOutcome) Partial() bool {
	return o.NotificationErr != nil || o.InventoryErr != nil
}

// LoanService runs the book request workflow.
type LoanService struct {
	requests      repository.BookRequestRepository
	policy        *workflow.Policy
	dispatcher    notifications.Dispatcher
	inventory     InventoryHook
	publisher     EventPublisher
	notifyTimeout time.Duration
	now           func() time.Time
}

// LoanServiceOptions carries the optional collaborators of a LoanService.
type LoanServiceOptions struct {
	Policy        *workflow.Policy
	Dispatcher    notifications.Dispatcher
	Inventory     InventoryHook
	Publisher     EventPublisher
	NotifyTimeout time.Duration
}

func NewLoanService(requests repository.BookRequestRepository, opts LoanServiceOptions) *LoanService {
	s := &LoanService{
		requests:      requests,
		policy:        opts.Policy,
		dispatcher:    opts.Dispatcher,
		inventory:     opts.Inventory,
		publisher:     opts.Publisher,
		notifyTimeout: opts.NotifyTimeout,
		now:           time.Now,
	}
	if s.policy == nil {
		s.policy = workflow.Permissive()
	}
	if s.dispatcher == nil {
		s.dispatcher = notifications.NoopDispatcher{}
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	return s
}

// List returns every request, newest first, with its book.
func (s *LoanService) List(ctx context.Context, op auth.Operator) ([]*models.BookRequest, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, models.NewStoreError("list book requests", err)
	}
	return reqs, nil
}

// Transition moves a loan request to target. Notification and inventory run
// only after the status update commits and never undo it.
func (s *LoanService) Transition(
	ctx context.Context, op auth.Operator, id uuid.UUID, target models.LoanStatus,
) (*TransitionOutcome, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	from := s.policy.LoanSources(target)
	if from == nil {
		return nil, models.NewValidationError("Status must be approved, rejected or returned")
	}

	ctx, span := observability.StartSpan(ctx, "loan.transition",
		attribute.String("target", string(target)),
		attribute.String("policy", s.policy.Name()),
	)
	defer span.End()

	req, prev, err := s.requests.SetStatus(ctx, id, from, target, s.now().UTC())
	if err != nil {
		observability.TransitionsTotal.WithLabelValues("loan", string(target), observability.OutcomeFailure).Inc()
		span.SetError(err)
		return nil, s.transitionError(id, prev, target, err)
	}

	middleware.Logger.InfoContext(ctx, "book request status changed",
		"id", id, "status", req.Status, "operator", op.Username())

	out := &TransitionOutcome{Request: req}
	if s.inventory != nil {
		out.InventoryErr = s.adjustInventory(ctx, req, prev, target)
	}
	if target == models.LoanStatusApproved {
		out.NotificationErr = s.notify(ctx, req)
		out.NotificationSent = out.NotificationErr == nil
	}

	outcome := observability.OutcomeSuccess
	if out.Partial() {
		outcome = observability.OutcomePartial
		span.AddAttributes(attribute.Bool("partial", true))
	}
	observability.TransitionsTotal.WithLabelValues("loan", string(target), outcome).Inc()

	s.publish(ctx, op, req)
	return out, nil
}

func (s *LoanService) transitionError(id uuid.UUID, prev, target models.LoanStatus, err error) error {
	if !errors.Is(err, repository.ErrStatusConflict) {
		return storeError("book request", id, "update book request status", err)
	}
	current := "its current status"
	if prev != "" {
		current = string(prev)
	}
	return models.NewInvalidTransitionError("book request", current, string(target))
}

func (s *LoanService) adjustInventory(ctx context.Context, req *models.BookRequest, prev, target models.LoanStatus) error {
	var err error
	switch {
	case target == models.LoanStatusApproved && prev != models.LoanStatusApproved:
		err = s.inventory.OnApprove(ctx, req)
	case target != models.LoanStatusApproved && prev == models.LoanStatusApproved:
		err = s.inventory.OnReturn(ctx, req)
	default:
		return nil
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "inventory update failed after loan transition",
			"id", req.ID, "book_id", req.BookID, "status", target, "error", err)
	}
	return err
}

// notify sends the approval email on a context detached from the request so
// an abandoned HTTP call does not cut off a committed approval's email.
func (s *LoanService) notify(ctx context.Context, req *models.BookRequest) error {
	msg := notifications.LoanApproval{
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
	}
	if req.Book != nil {
		msg.BookTitle = req.Book.Title
		msg.BookAuthor = req.Book.Author
	}
	if req.PreferredDueDate != nil {
		msg.DueDate = req.PreferredDueDate.Format(time.DateOnly)
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := s.dispatcher.SendLoanApproval(nctx, msg)
	switch {
	case err == nil:
		observability.NotificationsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	case errors.Is(err, notifications.ErrDispatcherDisabled):
		observability.NotificationsTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
		middleware.Logger.WarnContext(ctx, "loan approved without email, dispatcher disabled", "id", req.ID)
	default:
		observability.NotificationsTotal.WithLabelValues(observability.OutcomeFailure).Inc()
		middleware.Logger.ErrorContext(ctx, "loan approval email failed", "id", req.ID, "error", err)
	}
	return err
}

func (s *LoanService) publish(ctx context.Context, op auth.Operator, req *models.BookRequest) {
	if s.publisher == nil {
		return
	}
	ev := notifications.ModerationEvent{
		Kind:     "book_request",
		ID:       req.ID,
		Status:   string(req.Status),
		Operator: op.Username(),
		At:       s.now().UTC(),
	}
	if req.Book != nil {
		ev.Title = req.Book.Title
	}
	if err := s.publisher.PublishModeration(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish loan event", "id", req.ID, "error", err)
	}
}
