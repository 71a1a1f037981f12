package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	booksListPrefix  = "catalog:books:"
	eventsListPrefix = "catalog:events:"
	TeamListKey      = "catalog:team"
	PresidentKey     = "catalog:team:president"
	FeedKey          = "feed:poems"
)

const (
	CatalogTTL = 10 * time.Minute
	FeedTTL    = 2 * time.Minute
)

// BooksListKey caches the public catalog, optionally filtered by genre.
func BooksListKey(genre string) string {
	if genre == "" {
		genre = "all"
	}
	return booksListPrefix + genre
}

// EventsListKey caches the events listing for a given limit (0 = all).
func EventsListKey(limit int) string {
	return fmt.Sprintf("%s%d", eventsListPrefix, limit)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePrefix deletes every key starting with prefix.
func InvalidatePrefix(ctx context.Context, prefix string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateBooks(ctx context.Context) {
	InvalidatePrefix(ctx, booksListPrefix)
}

func InvalidateEvents(ctx context.Context) {
	InvalidatePrefix(ctx, eventsListPrefix)
}

func InvalidateTeam(ctx context.Context) {
	Invalidate(ctx, TeamListKey, PresidentKey)
}

func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, FeedKey)
}
