package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/metrics"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// GetResultUsecase polls the remote job behind a token the caller owns.
type GetResultUsecase struct {
	gate     *Gate
	executor judge.Executor
	repo     repository.SubmissionRepository
	logger   *zap.Logger
}

func NewGetResultUsecase(gate *Gate, executor judge.Executor, repo repository.SubmissionRepository, logger *zap.Logger) *GetResultUsecase {
	return &GetResultUsecase{gate: gate, executor: executor, repo: repo, logger: logger}
}

// Execute returns the stored outcome when the submission is complete;
// otherwise it polls once and stores the outcome the first time it is terminal.
func (uc *GetResultUsecase) Execute(ctx context.Context, userID, token string) (*domain.ResultResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	sub, err := uc.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return nil, domain.ErrSubmissionNotFound
		}
		uc.logger.Error("Failed to load submission by token", zap.Error(err))
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrSubmissionNotFound
	}

	if sub.CompletedAt != nil {
		return &domain.ResultResponse{Result: storedResult(sub), ExecutionStats: uc.gate.Stats(ctx, userID)}, nil
	}

	raw, err := uc.executor.Poll(ctx, token)
	if err != nil {
		uc.logger.Error("Remote poll failed", zap.String("token", token), zap.Error(err))
		return nil, err
	}
	result := judge.Interpret(raw)

	if !result.IsProcessing {
		applied, err := uc.repo.SetResult(ctx, sub.ID, domain.OutcomeFromResult(result))
		if err != nil {
			uc.logger.Error("Failed to store result", zap.Error(err), zap.String("submission_id", sub.ID.String()))
		}
		if applied {
			metrics.ExecutionsTotal.WithLabelValues(sub.Language, string(result.Status)).Inc()
		}
	}

	return &domain.ResultResponse{Result: result, ExecutionStats: uc.gate.Stats(ctx, userID)}, nil
}

func storedResult(sub *domain.Submission) *domain.ExecutionResult {
	res := &domain.ExecutionResult{
		StatusID:      judge.StatusID(sub.Status),
		Status:        sub.Status,
		Stdout:        sub.Stdout,
		Stderr:        sub.Stderr,
		CompileOutput: sub.CompileOutput,
		TimeSeconds:   sub.TimeSeconds,
		MemoryKB:      sub.MemoryKB,
	}
	if sub.ExitCode != nil {
		res.ExitCode = *sub.ExitCode
	}
	return res
}
