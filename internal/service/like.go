package service

import (
	"context"
	"strings"

	"sangrachna/internal/models"
	"sangrachna/internal/observability"
	"sangrachna/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// AnonymousVoter is the voter token used when the caller has no address.
const AnonymousVoter = "anonymous"

// LikeService toggles likes on approved poems.
type LikeService struct {
	poems repository.PoemRepository
}

func NewLikeService(poems repository.PoemRepository) *LikeService {
	return &LikeService{poems: poems}
}

// Toggle flips voterID's like on the poem. Calling it twice with the same
// arguments restores the original vote and count.
func (s *LikeService) Toggle(ctx context.Context, poemID uuid.UUID, voterID string) (models.LikeResult, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		voterID = AnonymousVoter
	}

	ctx, span := observability.StartSpan(ctx, "poem.toggle_like", attribute.String("poem_id", poemID.String()))
	defer span.End()

	poem, err := s.poems.GetByID(ctx, poemID)
	if err != nil {
		span.SetError(err)
		return models.LikeResult{}, storeError("Poem", poemID, "load poem", err)
	}
	if poem.Status != models.ContentStatusApproved {
		return models.LikeResult{}, models.NewNotFoundError("Poem", poemID)
	}

	res, err := s.poems.ToggleLike(ctx, poemID, voterID)
	if err != nil {
		span.SetError(err)
		return models.LikeResult{}, storeError("Poem", poemID, "toggle like", err)
	}

	direction := "unlike"
	if res.Voted {
		direction = "like"
	}
	observability.LikeTogglesTotal.WithLabelValues(direction).Inc()
	span.AddAttributes(attribute.Bool("voted", res.Voted), attribute.Int("likes_count", res.Count))
	return res, nil
}
