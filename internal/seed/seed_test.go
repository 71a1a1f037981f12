package seed

import (
	"context"
	"testing"

	"sangrachna/internal/models"
	"sangrachna/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixture_ShippedCatalog(t *testing.T) {
	f, err := LoadFixture("../../fixtures/catalog.yml")
	require.NoError(t, err)
	assert.Len(t, f.Books, 4)
	assert.Len(t, f.Events, 2)
	assert.Len(t, f.Team, 2)
	assert.Len(t, f.Poems, 2)
	assert.Equal(t, "Gitanjali", f.Books[0].Title)
}

func TestParseFixture_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "books:\n  - title: A\n    author: B\n    pages: 3\n",
		"missing author":  "books:\n  - title: A\n",
		"negative copies": "books:\n  - title: A\n    author: B\n    copies: -1\n",
		"bad event date":  "events:\n  - title: Reading\n    date: 18/07/2026\n",
		"team no role":    "team:\n  - name: Nandini\n",
		"poem status":     "poems:\n  - title: X\n    author: Y\n    status: published\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixture([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestApplyFixture(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f, err := LoadFixture("../../fixtures/catalog.yml")
	require.NoError(t, err)

	s := NewSeeder(db, 1)
	require.NoError(t, s.ApplyFixture(context.Background(), f))

	var book models.Book
	require.NoError(t, db.Where("title = ?", "Gitanjali").First(&book).Error)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 3, book.AvailableCopies)
	require.NotNil(t, book.PublicationYear)
	assert.Equal(t, 1910, *book.PublicationYear)

	var approved, pending int64
	db.Model(&models.Poem{}).Where("status = ?", models.ContentStatusApproved).Count(&approved)
	db.Model(&models.Poem{}).Where("status = ?", models.ContentStatusPending).Count(&pending)
	assert.Equal(t, int64(1), approved)
	assert.Equal(t, int64(1), pending)

	var president models.TeamMember
	require.NoError(t, db.Where("position = ?", models.PresidentPosition).First(&president).Error)
	assert.Equal(t, "Nandini Roy", president.Name)
}

func TestSeedFakeAndClear(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, 42)
	ctx := context.Background()

	counts, err := s.SeedFake(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, Counts{Books: 6, Requests: 3, Poems: 6, Pendown: 6, Events: 3}, counts)

	var published int64
	db.Model(&models.Poem{}).Where("status = ? AND published_at IS NOT NULL", models.ContentStatusApproved).Count(&published)
	assert.Equal(t, int64(2), published)

	require.NoError(t, s.ClearAll(ctx))
	var left int64
	db.Model(&models.Book{}).Count(&left)
	assert.Zero(t, left)
}

func TestSeedFake_Zero(t *testing.T) {
	counts, err := NewSeeder(testutil.NewSQLiteDB(t), 0).SeedFake(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}
