package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"sangrachna/internal/config"
	"sangrachna/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN_DefaultsSSLMode(t *testing.T) {
	dsn := DSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "club"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=club sslmode=disable", dsn)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Equal(t, "000002_toggle_poem_like", all[1].String())
	assert.Contains(t, all[1].UpScript, "CREATE OR REPLACE FUNCTION toggle_poem_like")
	assert.Contains(t, all[1].DownScript, "DROP FUNCTION")

	assert.NotNil(t, GetMigrationByVersion(2))
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{"missing down script", fstest.MapFS{
			"m/000001_init.up.sql": {Data: []byte("SELECT 1")},
		}},
		{"bad version", fstest.MapFS{
			"m/abc_init.up.sql":   {Data: []byte("SELECT 1")},
			"m/abc_init.down.sql": {Data: []byte("SELECT 1")},
		}},
		{"duplicate version", fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1")},
			"m/000001_b.up.sql":   {Data: []byte("SELECT 1")},
			"m/000001_b.down.sql": {Data: []byte("SELECT 1")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.files, "m")
			assert.Error(t, err)
		})
	}
}

func TestRunMigrations_AppliesPendingOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	registered := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	}
	store := NewMigrationStore(db)

	require.NoError(t, runMigrations(ctx, db, store, registered))
	require.NoError(t, runMigrations(ctx, db, store, registered))

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("gadgets"))

	require.NoError(t, store.RevertMigration(ctx, registered[1]))
	assert.False(t, db.Migrator().HasTable("gadgets"))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
}

func TestRunMigrations_RejectsUnknownVersions(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	store := NewMigrationStore(db)

	require.NoError(t, db.Exec(ensureMigrationLogTableSQL).Error)
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "future"}).Error)

	err := runMigrations(ctx, db, store, []Migration{{Version: 1, Name: "init", UpScript: "SELECT 1", DownScript: "SELECT 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestGetAppliedMigrations_MissingTable(t *testing.T) {
	applied, err := NewMigrationStore(openSQLite(t)).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		postgres  bool
		wantSQL   bool
		wantAuto  bool
		wantError bool
	}{
		{"hybrid dev postgres", config.Config{Env: "development", DBSchemaMode: "hybrid"}, true, true, true, false},
		{"hybrid prod postgres", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, true, false, false},
		{"hybrid staging postgres", config.Config{Env: "Staging", DBSchemaMode: ""}, true, true, false, false},
		{"sql postgres", config.Config{Env: "development", DBSchemaMode: "sql"}, true, true, false, false},
		{"auto prod refused", config.Config{Env: "production", DBSchemaMode: "auto"}, true, false, false, true},
		{"auto prod allowed", config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, true, false, true, false},
		{"sqlite always auto", config.Config{Env: "test", DBSchemaMode: "sql"}, false, false, true, false},
		{"unknown mode", config.Config{Env: "test", DBSchemaMode: "yolo"}, true, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSchema(&tt.cfg, tt.postgres)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.SQL)
			assert.Equal(t, tt.wantAuto, plan.AutoMigrate)
		})
	}
}

func TestPlanSchema_DestructiveOnlyInProduction(t *testing.T) {
	plan, err := PlanSchema(&config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, true)
	require.NoError(t, err)
	assert.True(t, plan.Destructive)

	plan, err = PlanSchema(&config.Config{Env: "development", DBSchemaMode: "auto"}, true)
	require.NoError(t, err)
	assert.False(t, plan.Destructive)
	assert.Equal(t, SchemaModeAuto, plan.Mode)
}

func TestApplySchema_SQLiteAutoMigrates(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: "hybrid"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.PoemLike{}, "idx_poem_likes_poem_voter"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.SQL)
	assert.True(t, status.AutoMigrate)
	assert.Empty(t, status.Pending)
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, strings.TrimSpace(buf.String()))

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT pg_sleep(1)", 1 }, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	assert.Empty(t, buf.String())
}
