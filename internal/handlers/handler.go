package handlers

import (
	"log/slog"

	"github.com/yixi1127/blog-system/internal/config"
	"github.com/yixi1127/blog-system/internal/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handler struct {
	cfg             config.Config
	logger          *slog.Logger
	db              *gorm.DB
	rdb             *redis.Client
	tokenService    *services.TokenService
	articleService  *services.ArticleService
	categoryService *services.CategoryService
	auditService    *services.AuditService
	viewService     *services.ViewService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	tokenService *services.TokenService,
	articleService *services.ArticleService,
	categoryService *services.CategoryService,
	auditService *services.AuditService,
	viewService *services.ViewService,
) *Handler {
	return &Handler{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		rdb:             rdb,
		tokenService:    tokenService,
		articleService:  articleService,
		categoryService: categoryService,
		auditService:    auditService,
		viewService:     viewService,
	}
}
