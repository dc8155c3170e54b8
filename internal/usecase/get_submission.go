package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// GetSubmissionUsecase handles retrieving a stored submission.
type GetSubmissionUsecase struct {
	repo   repository.SubmissionRepository
	logger *zap.Logger
}

func NewGetSubmissionUsecase(repo repository.SubmissionRepository, logger *zap.Logger) *GetSubmissionUsecase {
	return &GetSubmissionUsecase{repo: repo, logger: logger}
}

// Execute returns the submission when the caller owns it or may audit it.
// Other callers get ErrSubmissionNotFound so ids cannot be probed.
func (uc *GetSubmissionUsecase) Execute(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Submission, error) {
	sub, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != caller.UserID && !caller.CanAudit() {
		uc.logger.Debug("Submission access denied",
			zap.String("submission_id", id.String()),
			zap.String("user_id", caller.UserID),
		)
		return nil, domain.ErrSubmissionNotFound
	}
	return sub, nil
}
