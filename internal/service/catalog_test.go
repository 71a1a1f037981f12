package service

import (
	"context"
	"testing"
	"time"

	"sangrachna/internal/auth"
	"sangrachna/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(r repos) *CatalogService {
	return NewCatalogService(r.books, r.events, r.team)
}

func TestCatalog_BookLifecycle(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	op := testOperator(t)
	cat := newCatalog(r)

	book, err := cat.CreateBook(ctx, op, BookInput{
		Title:       ptr("Padma Nadir Majhi"),
		Author:      ptr("Manik Bandopadhyay"),
		Genre:       ptr("Fiction"),
		TotalCopies: ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
	assert.Equal(t, 3, book.TotalCopies)

	updated, err := cat.UpdateBook(ctx, op, book.ID, BookInput{AvailableCopies: ptr(1), IsFeatured: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Padma Nadir Majhi", updated.Title)
	assert.Equal(t, 1, updated.AvailableCopies)
	assert.True(t, updated.IsFeatured)

	_, err = cat.UpdateBook(ctx, op, book.ID, BookInput{AvailableCopies: ptr(4)})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	fiction, err := cat.ListBooks(ctx, "Fiction")
	require.NoError(t, err)
	assert.Len(t, fiction, 1)
	poetry, err := cat.ListBooks(ctx, "Poetry")
	require.NoError(t, err)
	assert.Empty(t, poetry)

	require.NoError(t, cat.DeleteBook(ctx, op, book.ID))
	_, err = cat.GetBook(ctx, book.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCatalog_BookValidation(t *testing.T) {
	r := newRepos(t)
	cat := newCatalog(r)
	ctx := context.Background()

	_, err := cat.CreateBook(ctx, testOperator(t), BookInput{Author: ptr("Anon")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = cat.CreateBook(ctx, testOperator(t), BookInput{Title: ptr("T"), Author: ptr("A"), TotalCopies: ptr(-1)})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = cat.CreateBook(ctx, auth.Operator{}, BookInput{Title: ptr("T"), Author: ptr("A")})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestCatalog_Events(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	op := testOperator(t)
	cat := newCatalog(r)

	for i, date := range []string{"2026-01-10", "2026-03-14T18:30:00+05:30", "2026-02-01", "2026-04-20"} {
		_, err := cat.CreateEvent(ctx, op, EventInput{Title: ptr("Reading " + string(rune('A'+i))), Date: ptr(date)})
		require.NoError(t, err)
	}

	latest, err := cat.ListEvents(ctx, HomeEventsLimit)
	require.NoError(t, err)
	require.Len(t, latest, HomeEventsLimit)
	assert.Equal(t, "Reading D", latest[0].Title)
	assert.Equal(t, models.EventStatusUpcoming, latest[0].Status)
	require.NotNil(t, latest[0].CreatedBy)
	assert.Equal(t, "asha", *latest[0].CreatedBy)

	all, err := cat.ListEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = cat.CreateEvent(ctx, op, EventInput{Title: ptr("Bad"), Date: ptr("next friday")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	ev := all[0]
	updated, err := cat.UpdateEvent(ctx, op, ev.ID, EventInput{Status: ptr("completed"), Location: ptr("Seminar Hall")})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	require.NotNil(t, updated.Location)

	require.NoError(t, cat.DeleteEvent(ctx, op, ev.ID))
	err = cat.DeleteEvent(ctx, op, ev.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestParseEventDate(t *testing.T) {
	d, err := parseEventDate("2026-03-14T18:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC), *d)

	d, err = parseEventDate("")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestCatalog_TeamAndPresident(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	op := testOperator(t)
	cat := newCatalog(r)

	_, err := cat.President(ctx)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = cat.CreateTeamMember(ctx, op, TeamMemberInput{Name: ptr("Ishaan"), Position: ptr("Secretary"), OrderPriority: ptr(2)})
	require.NoError(t, err)
	pres, err := cat.CreateTeamMember(ctx, op, TeamMemberInput{
		Name:          ptr("Nandini"),
		Position:      ptr(models.PresidentPosition),
		Email:         ptr("nandini@example.edu"),
		OrderPriority: ptr(1),
	})
	require.NoError(t, err)

	got, err := cat.President(ctx)
	require.NoError(t, err)
	assert.Equal(t, pres.ID, got.ID)

	team, err := cat.ListTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "Nandini", team[0].Name)

	_, err = cat.UpdateTeamMember(ctx, op, pres.ID, TeamMemberInput{Email: ptr("nope")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	updated, err := cat.UpdateTeamMember(ctx, op, pres.ID, TeamMemberInput{Bio: ptr("Reads Jibanananda at dawn")})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)

	require.NoError(t, cat.DeleteTeamMember(ctx, op, pres.ID))
	_, err = cat.President(ctx)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
