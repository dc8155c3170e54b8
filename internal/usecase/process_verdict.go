package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// ProcessVerdictUsecase folds one verdict event into the per-problem stats.
type ProcessVerdictUsecase struct {
	stats      repository.ProblemStatsRepository
	idempotent repository.IdempotencyStore
	logger     *zap.Logger
}

func NewProcessVerdictUsecase(
	stats repository.ProblemStatsRepository,
	idempotent repository.IdempotencyStore,
	logger *zap.Logger,
) *ProcessVerdictUsecase {
	return &ProcessVerdictUsecase{
		stats:      stats,
		idempotent: idempotent,
		logger:     logger,
	}
}

// Execute applies the event once per submission id. Returns (isDuplicate, error).
// On failure the lock is released so a replay from the dead-letter queue can
// apply the event.
func (uc *ProcessVerdictUsecase) Execute(ctx context.Context, event *domain.VerdictEvent) (bool, error) {
	acquired, err := uc.idempotent.AcquireLock(ctx, event.SubmissionID)
	if err != nil {
		uc.logger.Error("Failed to acquire idempotency lock", zap.Error(err), zap.String("submission_id", event.SubmissionID.String()))
		return false, err
	}
	if !acquired {
		uc.logger.Info("Duplicate verdict event, skipping", zap.String("submission_id", event.SubmissionID.String()))
		return true, nil
	}

	if err := uc.stats.RecordVerdict(ctx, event); err != nil {
		uc.logger.Error("Failed to record verdict", zap.Error(err), zap.String("submission_id", event.SubmissionID.String()))
		if relErr := uc.idempotent.ReleaseLock(ctx, event.SubmissionID); relErr != nil {
			uc.logger.Warn("Failed to release idempotency lock", zap.Error(relErr))
		}
		return false, err
	}

	if err := uc.idempotent.MarkDone(ctx, event.SubmissionID); err != nil {
		uc.logger.Warn("Failed to extend idempotency lock", zap.Error(err))
	}

	uc.logger.Info("Verdict recorded",
		zap.String("submission_id", event.SubmissionID.String()),
		zap.String("problem_id", event.ProblemID),
		zap.String("status", string(event.Status)),
		zap.Bool("first_solve", event.FirstSolve()),
	)
	return false, nil
}
