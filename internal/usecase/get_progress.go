package usecase

import (
	"context"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/progress"
)

// GetProgressUsecase returns the caller's progress record.
type GetProgressUsecase struct {
	ledger *progress.Ledger
}

func NewGetProgressUsecase(ledger *progress.Ledger) *GetProgressUsecase {
	return &GetProgressUsecase{ledger: ledger}
}

func (uc *GetProgressUsecase) Execute(ctx context.Context, userID string) (*domain.ProgressRecord, error) {
	return uc.ledger.Get(ctx, userID)
}
