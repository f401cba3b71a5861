// Command seed creates the initial owner account so the first admin actions
// (merchant acceptance, promotions) have a principal to run as.
package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"commercego/internal/auth"
	"commercego/internal/config"
	"commercego/internal/db"
	"commercego/internal/logging"
	"commercego/internal/model"
	"commercego/internal/repository"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Environment, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	username := envOr("SEED_OWNER_USERNAME", "owner")
	email := envOr("SEED_OWNER_EMAIL", "owner@commercego.local")
	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		logger.Fatal("SEED_OWNER_PASSWORD is required")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)

	if _, err := users.FindByUsername(ctx, username); err == nil {
		logger.Info("owner already exists", zap.String("username", username))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Fatal("owner lookup", zap.Error(err))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}

	owner := &model.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hashed,
		Role:           model.RoleOwner,
		Avatar:         "NONE",
		AccountEnabled: true,
	}
	if err := users.Create(ctx, owner); err != nil {
		logger.Fatal("create owner", zap.Error(err))
	}
	logger.Info("owner created", zap.String("username", username), zap.Uint("id", owner.ID))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
