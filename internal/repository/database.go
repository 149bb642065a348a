package repository

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yixi1127/blog-system/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the blog database. The DATABASE_URL scheme picks the driver:
// postgres in deployed environments, sqlite for local runs and tests.
func InitDB(cfg config.Config) (*gorm.DB, error) {
	var dialer gorm.Dialector
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres"):
		dialer = postgres.Open(cfg.DatabaseURL)
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite"):
		dialer = sqlite.Open(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialer, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// RunMigrations applies the blog schema (users, categories, articles,
// article_tags, audit_logs). Only called for postgres; sqlite test databases
// are migrated by gorm directly.
func RunMigrations(databaseURL string, sourcePath string) error {
	if sourcePath == "" {
		sourcePath = "file://migration"
	}
	m, err := migrate.New(
		sourcePath,
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	slog.Info("Blog schema migrations applied")
	return nil
}
