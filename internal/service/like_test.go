package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"sangrachna/internal/models"
	"sangrachna/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLike_ToggleTwiceRestoresState(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	likes := NewLikeService(r.poems)
	poem := testutil.CreatePoem(t, r.db, "Evening Raga", "Tara", models.ContentStatusApproved)

	res, err := likes.Toggle(ctx, poem.ID, "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Voted: true, Count: 1}, res)

	res, err = likes.Toggle(ctx, poem.ID, "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Voted: false, Count: 0}, res)

	stored, err := r.poems.GetByID(ctx, poem.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikesCount)
}

func TestLike_ConcurrentVotersAreAllCounted(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	likes := NewLikeService(r.poems)
	poem := testutil.CreatePoem(t, r.db, "Kite", "Sunil", models.ContentStatusApproved)

	const voters = 20
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := likes.Toggle(ctx, poem.ID, fmt.Sprintf("198.51.100.%d", i))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := r.poems.GetByID(ctx, poem.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, stored.LikesCount)

	for i := range voters {
		res, err := likes.Toggle(ctx, poem.ID, fmt.Sprintf("198.51.100.%d", i))
		require.NoError(t, err)
		assert.False(t, res.Voted)
		assert.GreaterOrEqual(t, res.Count, 0)
	}

	stored, err = r.poems.GetByID(ctx, poem.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikesCount)
}

func TestLike_VotersAreIndependent(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	likes := NewLikeService(r.poems)
	poem := testutil.CreatePoem(t, r.db, "Ferry", "Dev", models.ContentStatusApproved)

	_, err := likes.Toggle(ctx, poem.ID, "a")
	require.NoError(t, err)
	res, err := likes.Toggle(ctx, poem.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Voted: true, Count: 2}, res)

	res, err = likes.Toggle(ctx, poem.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Voted: false, Count: 1}, res)
}

func TestLike_BlankVoterIsAnonymous(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	likes := NewLikeService(r.poems)
	poem := testutil.CreatePoem(t, r.db, "Sparrow", "Mini", models.ContentStatusApproved)

	res, err := likes.Toggle(ctx, poem.ID, "  ")
	require.NoError(t, err)
	assert.True(t, res.Voted)

	res, err = likes.Toggle(ctx, poem.ID, AnonymousVoter)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Voted: false, Count: 0}, res)
}

func TestLike_OnlyApprovedPoems(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	likes := NewLikeService(r.poems)

	pending := testutil.CreatePoem(t, r.db, "Draft", "Anon", models.ContentStatusPending)
	_, err := likes.Toggle(ctx, pending.ID, "203.0.113.9")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = likes.Toggle(ctx, uuid.New(), "203.0.113.9")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	stored, err := r.poems.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikesCount)
}
