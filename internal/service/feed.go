package service

import (
	"context"
	"sort"
	"time"

	"sangrachna/internal/cache"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"
)

// FeedService builds the public poems page.
type FeedService struct {
	poems   repository.PoemRepository
	pendown repository.PendownRepository
}

func NewFeedService(poems repository.PoemRepository, pendown repository.PendownRepository) *FeedService {
	return &FeedService{poems: poems, pendown: pendown}
}

// Feed merges approved poems and pen-down posts, newest first.
func (s *FeedService) Feed(ctx context.Context) ([]models.FeedItem, error) {
	items := []models.FeedItem{}
	err := cache.Aside(ctx, cache.FeedKey, &items, cache.FeedTTL, func() error {
		var err error
		items, err = s.build(ctx)
		return err
	})
	if err != nil {
		return nil, models.NewStoreError("load feed", err)
	}
	return items, nil
}

func (s *FeedService) build(ctx context.Context) ([]models.FeedItem, error) {
	poems, err := s.poems.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.pendown.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(poems)+len(posts))
	for _, p := range poems {
		items = append(items, models.FeedItem{
			Kind:        models.ContentKindPoem,
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Author:      p.Author,
			LikesCount:  p.LikesCount,
			PublishedAt: p.PublishedAt,
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, p := range posts {
		items = append(items, models.FeedItem{
			Kind:        models.ContentKindPendown,
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Author:      p.Author,
			Excerpt:     p.Excerpt,
			Tags:        p.Tags,
			PublishedAt: p.PublishedAt,
			CreatedAt:   p.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return feedTime(items[i]).After(feedTime(items[j]))
	})
	return items, nil
}

func feedTime(it models.FeedItem) time.Time {
	if it.CreatedAt.IsZero() && it.PublishedAt != nil {
		return *it.PublishedAt
	}
	return it.CreatedAt
}
