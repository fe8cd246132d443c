package changelog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the audit sink. Appends are best-effort: a failed write is
// logged and swallowed so it can never roll back the mutation it describes.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Append(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.repo.Insert(ctx, &entry); err != nil {
		s.logger.Warn("Failed to append change log entry",
			zap.String("parent_kind", entry.ParentKind),
			zap.String("parent_id", entry.ParentID.String()),
			zap.String("user_id", entry.UserID),
			zap.Error(err))
	}
}

func (s *Service) FindForParent(ctx context.Context, parentKind string, parentID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.FindForParent(ctx, parentKind, parentID, limit)
}
