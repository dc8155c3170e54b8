package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// SubmitCodeUsecase creates a remote job and returns its token for polling.
type SubmitCodeUsecase struct {
	gate     *Gate
	executor judge.Executor
	repo     repository.SubmissionRepository
	logger   *zap.Logger
}

func NewSubmitCodeUsecase(gate *Gate, executor judge.Executor, repo repository.SubmissionRepository, logger *zap.Logger) *SubmitCodeUsecase {
	return &SubmitCodeUsecase{gate: gate, executor: executor, repo: repo, logger: logger}
}

func (uc *SubmitCodeUsecase) Execute(ctx context.Context, userID string, req *domain.SubmitCodeRequest) (*domain.SubmitCodeResponse, error) {
	entry, err := uc.gate.Check(req.SourceCode, req.LanguageID)
	if err != nil {
		return nil, err
	}
	decision, err := uc.gate.Consume(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := uc.executor.Submit(ctx, requestFor(entry, req.SourceCode, req.Stdin))
	if err != nil {
		uc.logger.Error("Remote submit failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}
	sub := &domain.Submission{
		ID:         id,
		UserID:     userID,
		Language:   entry.Name,
		SourceCode: req.SourceCode,
		Stdin:      req.Stdin,
		Token:      &token,
		Mode:       domain.ModeAsync,
		Status:     domain.StatusPending,
	}
	if err := uc.repo.Create(ctx, sub); err != nil {
		uc.logger.Error("Failed to create submission", zap.Error(err), zap.String("submission_id", id.String()))
		return nil, fmt.Errorf("create submission: %w", err)
	}

	uc.logger.Info("Code submitted",
		zap.String("submission_id", id.String()),
		zap.String("user_id", userID),
		zap.String("language", entry.Name),
	)

	return &domain.SubmitCodeResponse{
		Token:               token,
		SubmissionID:        id,
		RemainingExecutions: decision.Remaining,
	}, nil
}
