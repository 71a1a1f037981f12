// Package bootstrap prepares the database, Redis and operator accounts a
// process needs before it serves anything.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sangrachna/internal/auth"
	"sangrachna/internal/cache"
	"sangrachna/internal/config"
	"sangrachna/internal/database"
	"sangrachna/internal/middleware"
	"sangrachna/internal/repository"
	"sangrachna/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if err := EnsureDevOperator(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("bootstrap development operator: %w", err)
	}
	return db, rdb, nil
}

// OperatorAdmin returns an AuthService suitable for account management. It
// issues no tokens that anyone will verify, so the secret only has to be set.
func OperatorAdmin(cfg *config.Config, db *gorm.DB) *service.AuthService {
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	return service.NewAuthService(repository.NewOperatorRepository(db), tokens, nil)
}

// EnsureDevOperator creates the DEV_OPERATOR_USERNAME account outside
// production. It never changes an existing account.
func EnsureDevOperator(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.IsProduction() {
		return nil
	}
	username := strings.TrimSpace(cfg.DevOperatorUsername)
	if username == "" {
		return nil
	}
	if cfg.DevOperatorPassword == "" {
		return fmt.Errorf("DEV_OPERATOR_PASSWORD must be set when DEV_OPERATOR_USERNAME is")
	}

	_, created, err := OperatorAdmin(cfg, db).EnsureOperator(ctx, username, cfg.DevOperatorPassword)
	if err != nil {
		return err
	}
	if created {
		middleware.Logger.Info("created development operator", "username", username)
	}
	return nil
}
