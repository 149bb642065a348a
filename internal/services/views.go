package services

import (
	"context"
	"log/slog"

	"github.com/yixi1127/blog-system/internal/models"

	"gorm.io/gorm"
)

// ViewService counts article detail reads off the request path. Counts are
// best-effort: a full buffer drops the event instead of slowing the reader.
type ViewService struct {
	db          *gorm.DB
	logger      *slog.Logger
	viewChannel chan uint
}

func NewViewService(db *gorm.DB, logger *slog.Logger) *ViewService {
	return &ViewService{
		db:          db,
		logger:      logger,
		viewChannel: make(chan uint, 1000),
	}
}

func (s *ViewService) Start(ctx context.Context) {
	s.logger.Info("View counter worker starting")
	for {
		select {
		case articleID := <-s.viewChannel:
			err := s.db.Model(&models.Article{}).
				Where("id = ?", articleID).
				UpdateColumn("views", gorm.Expr("views + 1")).Error
			if err != nil {
				s.logger.Error("Failed to record article view", "article_id", articleID, "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("View counter worker stopping")
			return
		}
	}
}

func (s *ViewService) RecordViewAsync(articleID uint) {
	select {
	case s.viewChannel <- articleID:
		// Sent
	default:
		s.logger.Warn("View channel full, dropping view event", "article_id", articleID)
	}
}
