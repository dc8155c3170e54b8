package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/harness"
	"github.com/Harsh-BH/codepractice/internal/metrics"
	"github.com/Harsh-BH/codepractice/internal/progress"
	"github.com/Harsh-BH/codepractice/internal/publisher"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// SubmitWithTestsUsecase grades code against a problem's test cases and
// records the first accepted solve in the caller's progress.
type SubmitWithTestsUsecase struct {
	gate      *Gate
	problems  repository.ProblemRepository
	repo      repository.SubmissionRepository
	harness   *harness.Harness
	ledger    *progress.Ledger
	publisher publisher.Publisher
	logger    *zap.Logger
}

func NewSubmitWithTestsUsecase(
	gate *Gate,
	problems repository.ProblemRepository,
	repo repository.SubmissionRepository,
	h *harness.Harness,
	ledger *progress.Ledger,
	pub publisher.Publisher,
	logger *zap.Logger,
) *SubmitWithTestsUsecase {
	return &SubmitWithTestsUsecase{
		gate:      gate,
		problems:  problems,
		repo:      repo,
		harness:   h,
		ledger:    ledger,
		publisher: pub,
		logger:    logger,
	}
}

func (uc *SubmitWithTestsUsecase) Execute(ctx context.Context, userID string, req *domain.SubmitWithTestsRequest) (*domain.SubmitWithTestsResponse, error) {
	problemID := strings.TrimSpace(req.ProblemID)
	if problemID == "" {
		return nil, domain.ErrMissingProblem
	}
	entry, err := uc.gate.Check(req.Code, req.Language)
	if err != nil {
		return nil, err
	}

	problem, err := uc.problems.GetByID(ctx, problemID)
	if err != nil {
		if !errors.Is(err, domain.ErrProblemNotFound) {
			uc.logger.Error("Failed to load problem", zap.String("problem_id", problemID), zap.Error(err))
		}
		return nil, err
	}
	if len(problem.TestCases) == 0 {
		return nil, domain.ErrNoTestCases
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
		ProblemID:  &problem.ID,
		Language:   entry.Name,
		SourceCode: req.Code,
		Mode:       domain.ModeTests,
		Status:     domain.StatusPending,
		TotalCases: len(problem.TestCases),
	}
	if err := uc.repo.Create(ctx, sub); err != nil {
		uc.logger.Error("Failed to create submission", zap.Error(err), zap.String("submission_id", id.String()))
		return nil, fmt.Errorf("create submission: %w", err)
	}

	verdict, err := uc.harness.Evaluate(ctx, requestFor(entry, req.Code, ""), problem.TestCases)
	if err != nil {
		uc.logger.Error("Evaluation failed", zap.String("submission_id", id.String()), zap.Error(err))
		return nil, err
	}

	// Progress and storage writes must land even if the client went away.
	bg := context.WithoutCancel(ctx)

	resp := &domain.SubmitWithTestsResponse{
		SubmissionID:    id,
		Status:          verdict.Status,
		TestResults:     verdict.Results,
		PassedTestCases: verdict.PassedTestCases,
		TotalTestCases:  verdict.TotalTestCases,
		ExecutionTime:   verdict.ExecutionTime,
		MemoryUsed:      verdict.MemoryUsed,
		Error:           verdict.Error,
	}

	if verdict.Accepted() {
		solve, err := uc.ledger.RecordSolve(bg, userID, problem.ID, problem.XP(), problem.Meta())
		if err != nil {
			uc.logger.Error("Failed to record solve",
				zap.String("user_id", userID),
				zap.String("problem_id", problem.ID),
				zap.Error(err),
			)
		} else {
			resp.XPEarned = solve.XPEarned
			resp.Achievements = solve.NewAchievements
		}
	}

	outcome := domain.SubmissionOutcome{
		Status:      verdict.Status,
		Stderr:      verdict.Error,
		TimeSeconds: verdict.ExecutionTime,
		MemoryKB:    verdict.MemoryUsed,
		PassedCases: verdict.PassedTestCases,
		TotalCases:  verdict.TotalTestCases,
		XPEarned:    resp.XPEarned,
	}
	if _, err := uc.repo.SetResult(bg, id, outcome); err != nil {
		uc.logger.Error("Failed to store verdict", zap.Error(err), zap.String("submission_id", id.String()))
	}
	metrics.ExecutionsTotal.WithLabelValues(entry.Name, string(verdict.Status)).Inc()

	event := &domain.VerdictEvent{
		SubmissionID: id,
		UserID:       userID,
		ProblemID:    problem.ID,
		Language:     entry.Name,
		Status:       verdict.Status,
		Passed:       verdict.PassedTestCases,
		Total:        verdict.TotalTestCases,
		XPEarned:     resp.XPEarned,
		OccurredAt:   time.Now().UTC(),
	}
	if err := uc.publisher.PublishVerdict(bg, event); err != nil {
		uc.logger.Warn("Failed to publish verdict event",
			zap.String("submission_id", id.String()),
			zap.Error(err),
		)
	}

	uc.logger.Info("Test submission graded",
		zap.String("submission_id", id.String()),
		zap.String("user_id", userID),
		zap.String("problem_id", problem.ID),
		zap.String("status", string(verdict.Status)),
		zap.Int("passed", verdict.PassedTestCases),
		zap.Int("total", verdict.TotalTestCases),
		zap.Int("xp_earned", resp.XPEarned),
	)

	return resp, nil
}
