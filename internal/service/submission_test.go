package service

import (
	"context"
	"strings"
	"testing"

	"sangrachna/internal/models"
	"sangrachna/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissions(r repos) *SubmissionService {
	return NewSubmissionService(r.poems, r.pendown, r.books, r.requests)
}

func TestSubmitPoem_TrimsAndStartsPending(t *testing.T) {
	r := newRepos(t)
	poem, err := newSubmissions(r).SubmitPoem(context.Background(), PoemSubmission{
		Title:   "  Dusk  ",
		Content: "Lamps on the ghats",
		Author:  " Kabir ",
		Email:   ptr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dusk", poem.Title)
	assert.Equal(t, "Kabir", poem.Author)
	assert.Nil(t, poem.SubmittedByEmail)
	assert.Equal(t, models.ContentStatusPending, poem.Status)
	assert.Equal(t, 0, poem.LikesCount)
}

func TestSubmitPoem_Validation(t *testing.T) {
	r := newRepos(t)
	subs := newSubmissions(r)
	ctx := context.Background()

	cases := map[string]PoemSubmission{
		"missing title":   {Content: "x", Author: "y"},
		"blank content":   {Title: "t", Content: "   ", Author: "y"},
		"missing author":  {Title: "t", Content: "x"},
		"title too long":  {Title: strings.Repeat("a", maxTitleLen+1), Content: "x", Author: "y"},
		"malformed email": {Title: "t", Content: "x", Author: "y", Email: ptr("not-an-email")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := subs.SubmitPoem(ctx, in)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation))
		})
	}

	n, err := r.poems.CountByStatus(ctx, models.ContentStatusPending)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitPendown_NormalizesTags(t *testing.T) {
	r := newRepos(t)
	post, err := newSubmissions(r).SubmitPendown(context.Background(), PendownSubmission{
		Title:   "On Translation",
		Content: "Long form",
		Author:  "Editorial Board",
		Excerpt: ptr("A short note"),
		Tags:    []string{"Essay", " essay", "", "Bengali"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"essay", "bengali"}, post.Tags)
	assert.Equal(t, models.ContentStatusPending, post.Status)
	require.NotNil(t, post.Excerpt)

	stored, err := r.pendown.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"essay", "bengali"}, stored.Tags)
}

func TestSubmitPendown_Validation(t *testing.T) {
	r := newRepos(t)
	subs := newSubmissions(r)
	ctx := context.Background()

	_, err := subs.SubmitPendown(ctx, PendownSubmission{Title: "t", Content: "c", Author: "a", ImageURL: ptr("ftp://example.com/x.png")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	tooMany := make([]string, maxTags+1)
	for i := range tooMany {
		tooMany[i] = strings.Repeat("t", i+1)
	}
	_, err = subs.SubmitPendown(ctx, PendownSubmission{Title: "t", Content: "c", Author: "a", Tags: tooMany})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestRequestLoan(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	subs := newSubmissions(r)
	book := testutil.CreateBook(t, r.db, "Nakshi Kanthar Math", "Jasimuddin", 1, 1)

	req, err := subs.RequestLoan(ctx, LoanRequestInput{
		BookID:           book.ID,
		UserName:         "Arjun",
		UserEmail:        "arjun@example.edu",
		RollNo:           ptr("CS-21-014"),
		PreferredDueDate: "2026-12-05",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, req.Status)
	require.NotNil(t, req.PreferredDueDate)
	assert.Equal(t, "2026-12-05", req.PreferredDueDate.Format("2006-01-02"))
	require.NotNil(t, req.Book)
	assert.Equal(t, "Nakshi Kanthar Math", req.Book.Title)
	assert.False(t, req.RequestDate.IsZero())

	_, err = subs.RequestLoan(ctx, LoanRequestInput{BookID: uuid.New(), UserName: "Arjun", UserEmail: "arjun@example.edu"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = subs.RequestLoan(ctx, LoanRequestInput{BookID: book.ID, UserName: "Arjun", UserEmail: "arjun"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = subs.RequestLoan(ctx, LoanRequestInput{BookID: book.ID, UserName: "Arjun", UserEmail: "arjun@example.edu", PreferredDueDate: "05/12/2026"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = subs.RequestLoan(ctx, LoanRequestInput{BookID: book.ID, UserEmail: "arjun@example.edu"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
