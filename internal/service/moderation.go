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

// EventPublisher receives committed status changes. *notifications.Notifier implements it.
type EventPublisher interface {
	PublishModeration(ctx context.Context, ev notifications.ModerationEvent) error
}

// ModerationService moves poems and pen-down posts through review.
type ModerationService struct {
	poems     repository.PoemRepository
	pendown   repository.PendownRepository
	policy    *workflow.Policy
	publisher EventPublisher
	now       func() time.Time
}

// NewModerationService returns a ModerationService. publisher may be nil.
func NewModerationService(
	poems repository.PoemRepository,
	pendown repository.PendownRepository,
	policy *workflow.Policy,
	publisher EventPublisher,
) *ModerationService {
	if policy == nil {
		policy = workflow.Permissive()
	}
	return &ModerationService{
		poems:     poems,
		pendown:   pendown,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

// Transition sets the status of a poem or pen-down post. Moving into approved
// stamps published_at the first time only.
func (s *ModerationService) Transition(
	ctx context.Context, op auth.Operator, kind models.ContentKind, id uuid.UUID, target models.ContentStatus,
) (*models.ModeratedRecord, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("Unknown content kind")
	}
	from := s.policy.ContentSources(target)
	if from == nil {
		return nil, models.NewValidationError("Status must be approved or rejected")
	}

	ctx, span := observability.StartSpan(ctx, "moderation.transition",
		attribute.String("kind", string(kind)),
		attribute.String("target", string(target)),
		attribute.String("policy", s.policy.Name()),
	)
	defer span.End()

	rec, err := s.setStatus(ctx, kind, id, from, target)
	if err != nil {
		observability.TransitionsTotal.WithLabelValues(string(kind), string(target), observability.OutcomeFailure).Inc()
		span.SetError(err)
		return nil, s.transitionError(ctx, kind, id, target, err)
	}
	observability.TransitionsTotal.WithLabelValues(string(kind), string(target), observability.OutcomeSuccess).Inc()

	middleware.Logger.InfoContext(ctx, "content status changed",
		"kind", kind, "id", id, "status", rec.Status, "operator", op.Username())
	s.publish(ctx, op, rec)
	return rec, nil
}

func (s *ModerationService) setStatus(
	ctx context.Context, kind models.ContentKind, id uuid.UUID, from []models.ContentStatus, target models.ContentStatus,
) (*models.ModeratedRecord, error) {
	now := s.now().UTC()
	switch kind {
	case models.ContentKindPoem:
		p, err := s.poems.SetStatus(ctx, id, from, target, now)
		if err != nil {
			return nil, err
		}
		return poemRecord(p), nil
	default:
		p, err := s.pendown.SetStatus(ctx, id, from, target, now)
		if err != nil {
			return nil, err
		}
		return pendownRecord(p), nil
	}
}

func (s *ModerationService) transitionError(
	ctx context.Context, kind models.ContentKind, id uuid.UUID, target models.ContentStatus, err error,
) error {
	if !errors.Is(err, repository.ErrStatusConflict) {
		return storeError(string(kind), id, "update "+string(kind)+" status", err)
	}
	current := "its current status"
	if status, lookupErr := s.currentStatus(ctx, kind, id); lookupErr == nil {
		current = string(status)
	}
	return models.NewInvalidTransitionError(string(kind), current, string(target))
}

func (s *ModerationService) currentStatus(ctx context.Context, kind models.ContentKind, id uuid.UUID) (models.ContentStatus, error) {
	if kind == models.ContentKindPoem {
		p, err := s.poems.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Status, nil
	}
	p, err := s.pendown.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Status, nil
}

func (s *ModerationService) publish(ctx context.Context, op auth.Operator, rec *models.ModeratedRecord) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishModeration(ctx, notifications.ModerationEvent{
		Kind:     string(rec.Kind),
		ID:       rec.ID,
		Title:    rec.Title,
		Status:   string(rec.Status),
		Operator: op.Username(),
		At:       s.now().UTC(),
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish moderation event", "id", rec.ID, "error", err)
	}
}

// ListPoems returns every poem, newest first, for the review panel.
func (s *ModerationService) ListPoems(ctx context.Context, op auth.Operator) ([]*models.Poem, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	poems, err := s.poems.ListAll(ctx)
	if err != nil {
		return nil, models.NewStoreError("list poems", err)
	}
	return poems, nil
}

// ListPendown returns every pen-down post, newest first, for the review panel.
func (s *ModerationService) ListPendown(ctx context.Context, op auth.Operator) ([]*models.PendownPost, error) {
	if err := requireOperator(op); err != nil {
		return nil, err
	}
	posts, err := s.pendown.ListAll(ctx)
	if err != nil {
		return nil, models.NewStoreError("list pen-down posts", err)
	}
	return posts, nil
}

// Delete hard-deletes a poem or pen-down post.
func (s *ModerationService) Delete(ctx context.Context, op auth.Operator, kind models.ContentKind, id uuid.UUID) error {
	if err := requireOperator(op); err != nil {
		return err
	}
	var err error
	switch kind {
	case models.ContentKindPoem:
		err = s.poems.Delete(ctx, id)
	case models.ContentKindPendown:
		err = s.pendown.Delete(ctx, id)
	default:
		return models.NewValidationError("Unknown content kind")
	}
	if err != nil {
		return storeError(string(kind), id, "delete "+string(kind), err)
	}
	middleware.Logger.InfoContext(ctx, "content deleted", "kind", kind, "id", id, "operator", op.Username())
	return nil
}

func poemRecord(p *models.Poem) *models.ModeratedRecord {
	return &models.ModeratedRecord{
		Kind:        models.ContentKindPoem,
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
	}
}

func pendownRecord(p *models.PendownPost) *models.ModeratedRecord {
	return &models.ModeratedRecord{
		Kind:        models.ContentKindPendown,
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
	}
}
