package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/quota"
)

// CodeStatsUsecase reports the caller's quota without consuming it.
type CodeStatsUsecase struct {
	tracker *quota.Tracker
	logger  *zap.Logger
}

func NewCodeStatsUsecase(tracker *quota.Tracker, logger *zap.Logger) *CodeStatsUsecase {
	return &CodeStatsUsecase{tracker: tracker, logger: logger}
}

func (uc *CodeStatsUsecase) Execute(ctx context.Context, userID string) (*domain.QuotaStats, error) {
	stats, err := uc.tracker.Stats(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to read quota stats", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &stats, nil
}
