package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/language"
	"github.com/Harsh-BH/codepractice/internal/quota"
	"github.com/Harsh-BH/codepractice/internal/security"
)

// Gate is the admission path shared by every execution endpoint. Validation
// and the security scan run before the quota is touched, so a rejected
// submission never consumes an execution.
type Gate struct {
	filter   *security.Filter
	registry *language.Registry
	tracker  *quota.Tracker
	logger   *zap.Logger
}

func NewGate(filter *security.Filter, registry *language.Registry, tracker *quota.Tracker, logger *zap.Logger) *Gate {
	return &Gate{filter: filter, registry: registry, tracker: tracker, logger: logger}
}

// Check validates code and resolves the language. No state changes.
func (g *Gate) Check(code string, ref domain.LanguageRef) (language.Entry, error) {
	if err := g.filter.Scan(code); err != nil {
		g.logger.Info("Submission rejected", zap.Error(err))
		return language.Entry{}, err
	}
	entry, err := g.registry.Resolve(ref)
	if err != nil {
		g.logger.Debug("Unknown language", zap.String("language", string(ref)))
		return language.Entry{}, err
	}
	return entry, nil
}

// Consume admits one execution for userID or returns a *domain.QuotaError.
func (g *Gate) Consume(ctx context.Context, userID string) (domain.QuotaDecision, error) {
	decision, err := g.tracker.Admit(ctx, userID)
	if err != nil {
		g.logger.Error("Quota store failed", zap.String("user_id", userID), zap.Error(err))
		return domain.QuotaDecision{}, err
	}
	if !decision.Allowed {
		g.logger.Info("Execution quota rejected",
			zap.String("user_id", userID),
			zap.String("reason", string(decision.Reason)),
			zap.Int("retry_after", decision.RetryAfterSeconds),
		)
		return decision, &domain.QuotaError{Decision: decision}
	}
	return decision, nil
}

// Stats returns the caller's execution stats for response bodies.
func (g *Gate) Stats(ctx context.Context, userID string) domain.ExecutionStats {
	stats, err := g.tracker.Stats(ctx, userID)
	if err != nil {
		g.logger.Warn("Failed to read quota stats", zap.String("user_id", userID), zap.Error(err))
		return domain.ExecutionStats{DailyLimit: g.tracker.DailyLimit()}
	}
	return domain.ExecutionStats{
		ExecutionsToday:     stats.ExecutionsToday,
		RemainingExecutions: stats.RemainingExecutions,
		DailyLimit:          stats.DailyLimit,
	}
}

func requestFor(entry language.Entry, code, stdin string) judge.Request {
	return judge.Request{
		SourceCode: code,
		Stdin:      stdin,
		LanguageID: entry.ID,
		Limits:     entry.Limits,
	}
}
