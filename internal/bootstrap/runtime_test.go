package bootstrap

import (
	"context"
	"testing"

	"sangrachna/internal/config"
	"sangrachna/internal/models"
	"sangrachna/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() *config.Config {
	return &config.Config{
		Env:                 "development",
		JWTSecret:           "bootstrap-secret-for-tests-only-0000",
		JWTTTLHours:         1,
		DevOperatorUsername: "editor",
		DevOperatorPassword: "editor-password-123",
	}
}

func TestEnsureDevOperator_CreatesOnce(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	cfg := devConfig()

	require.NoError(t, EnsureDevOperator(ctx, cfg, db))
	cfg.DevOperatorPassword = "a-different-password"
	require.NoError(t, EnsureDevOperator(ctx, cfg, db))

	var ops []models.Operator
	require.NoError(t, db.Find(&ops).Error)
	require.Len(t, ops, 1)
	assert.Equal(t, "editor", ops[0].Username)

	_, err := OperatorAdmin(cfg, db).Login(ctx, "editor", "editor-password-123")
	assert.NoError(t, err, "existing account keeps its original password")
}

func TestEnsureDevOperator_Skips(t *testing.T) {
	ctx := context.Background()

	t.Run("production", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := devConfig()
		cfg.Env = "production"
		require.NoError(t, EnsureDevOperator(ctx, cfg, db))
		var n int64
		db.Model(&models.Operator{}).Count(&n)
		assert.Zero(t, n)
	})

	t.Run("no username", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := devConfig()
		cfg.DevOperatorUsername = ""
		require.NoError(t, EnsureDevOperator(ctx, cfg, db))
	})

	t.Run("missing password", func(t *testing.T) {
		cfg := devConfig()
		cfg.DevOperatorPassword = ""
		assert.Error(t, EnsureDevOperator(ctx, cfg, testutil.NewSQLiteDB(t)))
	})
}
