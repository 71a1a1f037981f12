package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sangrachna/internal/config"
	"sangrachna/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// modeRule says which tools a schema mode runs. AutoMigrate in production
// follows inProd, and optIn makes it require DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
type modeRule struct {
	sql    bool
	auto   bool
	inProd bool
	optIn  bool
}

var schemaModes = map[string]modeRule{
	SchemaModeSQL:    {sql: true},
	SchemaModeHybrid: {sql: true, auto: true},
	SchemaModeAuto:   {auto: true, inProd: true, optIn: true},
}

var productionEnvs = map[string]bool{
	"production": true,
	"prod":       true,
	"staging":    true,
	"stage":      true,
}

// SchemaPlan is what ApplySchema will do for one configuration.
type SchemaPlan struct {
	Mode        string
	Env         string
	SQL         bool
	AutoMigrate bool
	// Destructive is set when AutoMigrate was explicitly allowed in production.
	Destructive bool
}

// SchemaStatus is a SchemaPlan plus the migration history of the database.
type SchemaStatus struct {
	SchemaPlan
	Applied []int
	Pending []Migration
}

// PlanSchema resolves DB_SCHEMA_MODE against the environment. The embedded
// SQL migrations are PostgreSQL-only, so other dialects get AutoMigrate alone.
func PlanSchema(cfg *config.Config, postgres bool) (SchemaPlan, error) {
	plan := SchemaPlan{
		Mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		Env:  cfg.Env,
	}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	rule, ok := schemaModes[plan.Mode]
	if !ok {
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}

	prod := productionEnvs[strings.ToLower(strings.TrimSpace(cfg.Env))]
	if prod && rule.optIn && !cfg.DBAutoMigrateAllowDestructive {
		return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=%s in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", plan.Mode, cfg.Env)
	}

	if !postgres {
		plan.AutoMigrate = true
		return plan, nil
	}
	plan.SQL = rule.sql
	plan.AutoMigrate = rule.auto && (!prod || rule.inProd)
	plan.Destructive = prod && plan.AutoMigrate
	return plan, nil
}

// ApplySchema brings the database schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg, IsPostgres(db))
	if err != nil {
		return err
	}

	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !plan.AutoMigrate {
		return nil
	}

	if plan.Destructive {
		middleware.Logger.Warn("AutoMigrate enabled in a production environment; review schema diffs before deploying",
			slog.String("env", plan.Env))
	}
	middleware.Logger.Info("auto-migrating models", slog.String("mode", plan.Mode), slog.String("env", plan.Env))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus returns the plan and, when SQL migrations are part of it,
// which versions are applied and which are still pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg, IsPostgres(db))
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan}
	if !plan.SQL {
		return status, nil
	}

	if status.Applied, err = NewMigrationStore(db).GetAppliedMigrations(ctx); err != nil {
		return nil, err
	}
	done := make(map[int]struct{}, len(status.Applied))
	for _, v := range status.Applied {
		done[v] = struct{}{}
	}
	for _, m := range GetMigrations() {
		if _, ok := done[m.Version]; !ok {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}
