package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/metrics"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// ExecuteCodeUsecase runs code synchronously and returns the finished result.
type ExecuteCodeUsecase struct {
	gate     *Gate
	executor judge.Executor
	repo     repository.SubmissionRepository
	logger   *zap.Logger
}

func NewExecuteCodeUsecase(gate *Gate, executor judge.Executor, repo repository.SubmissionRepository, logger *zap.Logger) *ExecuteCodeUsecase {
	return &ExecuteCodeUsecase{gate: gate, executor: executor, repo: repo, logger: logger}
}

func (uc *ExecuteCodeUsecase) Execute(ctx context.Context, userID string, req *domain.ExecuteCodeRequest) (*domain.ResultResponse, error) {
	entry, err := uc.gate.Check(req.Code, req.Language)
	if err != nil {
		return nil, err
	}
	if _, err := uc.gate.Consume(ctx, userID); err != nil {
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
		SourceCode: req.Code,
		Stdin:      req.Stdin,
		Mode:       domain.ModeSync,
		Status:     domain.StatusPending,
	}
	if err := uc.repo.Create(ctx, sub); err != nil {
		uc.logger.Error("Failed to create submission", zap.Error(err), zap.String("submission_id", id.String()))
		return nil, fmt.Errorf("create submission: %w", err)
	}

	result, err := uc.executor.RunToCompletion(ctx, requestFor(entry, req.Code, req.Stdin))
	if err != nil {
		uc.logger.Error("Synchronous execution failed",
			zap.String("submission_id", id.String()),
			zap.Error(err),
		)
		uc.storeOutcome(ctx, id, domain.SubmissionOutcome{Status: domain.StatusRuntimeError, Stderr: err.Error()})
		return nil, err
	}
	uc.storeOutcome(ctx, id, domain.OutcomeFromResult(result))
	metrics.ExecutionsTotal.WithLabelValues(entry.Name, string(result.Status)).Inc()

	return &domain.ResultResponse{Result: result, ExecutionStats: uc.gate.Stats(ctx, userID)}, nil
}

// storeOutcome uses a context detached from the request so a client that
// disconnects mid-run still gets its submission closed out.
func (uc *ExecuteCodeUsecase) storeOutcome(ctx context.Context, id uuid.UUID, outcome domain.SubmissionOutcome) {
	if _, err := uc.repo.SetResult(context.WithoutCancel(ctx), id, outcome); err != nil {
		uc.logger.Error("Failed to store result", zap.Error(err), zap.String("submission_id", id.String()))
	}
}
